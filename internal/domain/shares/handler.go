package shares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"claims-review/internal/domain/claims"
	"claims-review/internal/middleware"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

const heartbeatEvery = 25 * time.Second

func RegisterRoutes(r chi.Router, svc *Service, pol claims.AccessPolicy, log logger.Logger) {
	h := &handler{svc: svc, pol: pol, log: logger.OrDiscard(log)}

	r.Post("/claims/{claimID}/shares", h.share)
	r.Get("/claims/{claimID}/shares", h.listForClaim)
	r.Delete("/shares/{shareID}", h.unshare)
	r.Get("/me/shared-claims", h.sharedWithMe)
	r.Get("/me/shared-claims/events", h.events)
}

type handler struct {
	svc *Service
	pol claims.AccessPolicy
	log logger.Logger
}

type shareRequest struct {
	RecipientID string `json:"recipient_id"`
}

type ShareResponse struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claim_id"`
	SharerID    string    `json:"sharer_id"`
	RecipientID string    `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(s Share) ShareResponse {
	return ShareResponse{
		ID:          s.ID,
		ClaimID:     s.ClaimID,
		SharerID:    s.SharerID,
		RecipientID: s.RecipientID,
		CreatedAt:   s.CreatedAt,
	}
}

type sharedClaimResponse struct {
	ShareID    string               `json:"share_id"`
	SharedAt   time.Time            `json:"shared_at"`
	SharedBy   string               `json:"shared_by"`
	SharerName string               `json:"sharer_name"`
	Claim      claims.ClaimResponse `json:"claim"`
}

// loadVisibleClaim corta con 404/403 si el caller no puede ver el claim.
func (h *handler) loadVisibleClaim(w http.ResponseWriter, r *http.Request, p auth.Principal) (claims.Claim, bool) {
	c, err := h.svc.claims.Get(r.Context(), chi.URLParam(r, "claimID"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return claims.Claim{}, false
	}
	if err := claims.EnsureVisible(r.Context(), h.pol, p, c); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return claims.Claim{}, false
	}
	return c, true
}

// share godoc
// @Summary Share claim with another agent
// @Tags shares
// @Accept json
// @Produce json
// @Param claimID path string true "claim id"
// @Param payload body shareRequest true "recipient"
// @Success 201 {object} ShareResponse
// @Failure 400 {object} object "self share"
// @Failure 404 {object} object "claim or recipient not found"
// @Failure 409 {object} object "already shared"
// @Router /claims/{claimID}/shares [post]
func (h *handler) share(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.pol.Require(p, auth.ActionShareClaim); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	c, ok := h.loadVisibleClaim(w, r, p)
	if !ok {
		return
	}

	var req shareRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	sh, err := h.svc.Share(r.Context(), c.ID, p.ID, req.RecipientID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(sh))
}

func (h *handler) listForClaim(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	c, ok := h.loadVisibleClaim(w, r, p)
	if !ok {
		return
	}

	items, err := h.svc.ListForClaim(r.Context(), c.ID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]ShareResponse, 0, len(items))
	for _, sh := range items {
		out = append(out, toResponse(sh))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *handler) unshare(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unshare(r.Context(), chi.URLParam(r, "shareID"), p.ID); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sharedWithMe godoc
// @Summary Claims shared with me
// @Description Newest share first.
// @Tags shares
// @Produce json
// @Success 200 {array} sharedClaimResponse
// @Router /me/shared-claims [get]
func (h *handler) sharedWithMe(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}

	items, err := h.svc.ListSharedWithMe(r.Context(), p.ID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]sharedClaimResponse, 0, len(items))
	for _, sc := range items {
		out = append(out, sharedClaimResponse{
			ShareID:    sc.Share.ID,
			SharedAt:   sc.Share.CreatedAt,
			SharedBy:   sc.Share.SharerID,
			SharerName: sc.SharerName,
			Claim:      claims.ToResponse(sc.Claim),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// events godoc
// @Summary Stream of new shares for the caller
// @Description Server-Sent Events; one "share" event per new share. Best-effort: refetch /me/shared-claims on reconnect.
// @Tags shares
// @Produce text/event-stream
// @Router /me/shared-claims/events [get]
func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// El server tiene WriteTimeout; el stream no.
	_ = rc.SetWriteDeadline(time.Time{})

	queue := make(chan Notification, 16)
	sub, err := h.svc.Subscribe(r.Context(), p.ID, func(n Notification) {
		select {
		case queue <- n:
		default:
		}
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Warn("event stream not flushable", map[string]any{"error": err.Error()})
		return
	}

	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case n := <-queue:
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: share\ndata: %s\n\n", n.ShareID, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
