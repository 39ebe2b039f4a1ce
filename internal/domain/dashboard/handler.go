package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"claims-review/internal/domain/claims"
	"claims-review/internal/middleware"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

// ClaimLister lo implementa *claims.Service.
type ClaimLister interface {
	List(ctx context.Context, f claims.ListFilter) ([]claims.Claim, error)
}

func RegisterRoutes(r chi.Router, lister ClaimLister, pol claims.AccessPolicy, log logger.Logger) {
	h := &handler{
		lister: lister,
		pol:    pol,
		log:    logger.OrDiscard(log),
		now:    func() time.Time { return time.Now().UTC() },
	}
	r.Get("/dashboard", h.get)
}

type handler struct {
	lister ClaimLister
	pol    claims.AccessPolicy
	log    logger.Logger
	now    func() time.Time
}

type dashboardResponse struct {
	Scope  string                 `json:"scope"` // "all" (admin) | "visible" (agent)
	Counts Counts                 `json:"counts"`
	Recent []claims.ClaimResponse `json:"recent"`
	Trend  []MonthBucket          `json:"trend"`
}

// get godoc
// @Summary Dashboard summary
// @Description Status counts, 5 most recently updated claims and a 6-month trend over the claims visible to the caller.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboardResponse
// @Router /dashboard [get]
func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.pol.Require(p, auth.ActionViewDashboard); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	items, err := h.lister.List(r.Context(), claims.ListFilter{})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	items, err = h.pol.ScopeClaims(r.Context(), p, items)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	sum := Summarize(items, h.now())
	scope := "visible"
	if p.IsAdmin() {
		scope = "all"
	}

	httpx.WriteJSON(w, http.StatusOK, dashboardResponse{
		Scope:  scope,
		Counts: sum.Counts,
		Recent: claims.ToResponses(sum.Recent),
		Trend:  sum.Trend,
	})
}
