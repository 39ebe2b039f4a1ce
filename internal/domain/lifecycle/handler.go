package lifecycle

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"claims-review/internal/domain/claims"
	"claims-review/internal/middleware"
	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, eng *Engine, pol claims.AccessPolicy, log logger.Logger) {
	h := &handler{eng: eng, pol: pol, log: logger.OrDiscard(log)}

	r.Post("/claims/bulk-status", h.bulk)
	r.Post("/claims/{claimID}/status", h.change)
}

type handler struct {
	eng *Engine
	pol claims.AccessPolicy
	log logger.Logger
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

type changeStatusResponse struct {
	Claim   claims.ClaimResponse `json:"claim"`
	Changed bool                 `json:"changed"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

type bulkFailureResponse struct {
	ID      string      `json:"id"`
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
}

type bulkStatusResponse struct {
	Status       claims.Status          `json:"status"`
	Requested    int                    `json:"requested"`
	UpdatedCount int                    `json:"updated_count"`
	Updated      []claims.ClaimResponse `json:"updated"`
	Unchanged    []string               `json:"unchanged"`
	Failures     []bulkFailureResponse  `json:"failures"`
	Summary      string                 `json:"summary"`
}

func (h *handler) guardFor(ctx context.Context, p auth.Principal) Guard {
	return func(c claims.Claim) error {
		return claims.EnsureVisible(ctx, h.pol, p, c)
	}
}

// change godoc
// @Summary Change claim status
// @Description Any status may move to any other. Asking for the current status is a no-op (changed=false).
// @Tags lifecycle
// @Accept json
// @Produce json
// @Param claimID path string true "claim id"
// @Param payload body changeStatusRequest true "target status"
// @Success 200 {object} changeStatusResponse
// @Failure 400 {object} object "invalid status"
// @Failure 403 {object} object "claim not visible"
// @Failure 404 {object} object "not found"
// @Router /claims/{claimID}/status [post]
func (h *handler) change(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.pol.Require(p, auth.ActionChangeStatus); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var req changeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	target, err := claims.ParseStatus(req.Status)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	c, changed, err := h.eng.TransitionByID(r.Context(), chi.URLParam(r, "claimID"), target, h.guardFor(r.Context(), p))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if changed {
		h.log.Info("claim status changed", map[string]any{"claim_id": c.ID, "status": string(c.Status), "by": p.ID})
	}

	httpx.WriteJSON(w, http.StatusOK, changeStatusResponse{Claim: claims.ToResponse(c), Changed: changed})
}

// bulk godoc
// @Summary Bulk status update
// @Description Applies the target status to every id in order. Failures are reported per id and do not roll back the rest.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Param payload body bulkStatusRequest true "ids + target status"
// @Success 200 {object} bulkStatusResponse
// @Failure 400 {object} object "invalid status or empty ids"
// @Router /claims/bulk-status [post]
func (h *handler) bulk(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.pol.Require(p, auth.ActionBulkUpdateStatus); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var req bulkStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if len(req.IDs) == 0 {
		httpx.WriteError(w, r, h.log, apperr.New(apperr.CodeInvalidInput, "ids required"))
		return
	}
	target, err := claims.ParseStatus(req.Status)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	rep, err := h.eng.BulkTransition(r.Context(), req.IDs, target, h.guardFor(r.Context(), p))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	failures := make([]bulkFailureResponse, 0, len(rep.Failures))
	for _, f := range rep.Failures {
		failures = append(failures, bulkFailureResponse{
			ID:      f.ID,
			Error:   apperr.CodeOf(f.Err),
			Message: apperr.MessageOf(f.Err),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, bulkStatusResponse{
		Status:       rep.Target,
		Requested:    rep.Requested,
		UpdatedCount: rep.UpdatedCount,
		Updated:      claims.ToResponses(rep.Updated),
		Unchanged:    rep.Unchanged,
		Failures:     failures,
		Summary:      rep.Summary(),
	})
}
