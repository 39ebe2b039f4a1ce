package agents

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"claims-review/internal/middleware"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

// Authorizer evita importar el paquete access.
type Authorizer interface {
	Require(p auth.Principal, a auth.Action) error
}

func RegisterRoutes(r chi.Router, svc *Service, authz Authorizer, log logger.Logger) {
	h := &handler{svc: svc, authz: authz, log: logger.OrDiscard(log)}

	r.Get("/agents", h.list)
	r.Post("/agents", h.create)
}

type handler struct {
	svc   *Service
	authz Authorizer
	log   logger.Logger
}

type AgentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(a Agent) AgentResponse {
	return AgentResponse{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, CreatedAt: a.CreatedAt}
}

type createAgentRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// list godoc
// @Summary List agents
// @Description Directory used by the share dialog.
// @Tags agents
// @Produce json
// @Param role query string false "admin|agent"
// @Param exclude query string false "profile id to leave out"
// @Success 200 {array} AgentResponse
// @Router /agents [get]
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequirePrincipal(w, r); !ok {
		return
	}

	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), ListFilter{
		Role:      auth.Role(strings.TrimSpace(q.Get("role"))),
		ExcludeID: strings.TrimSpace(q.Get("exclude")),
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]AgentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// create godoc
// @Summary Provision agent profile
// @Tags agents
// @Accept json
// @Produce json
// @Param payload body createAgentRequest true "profile"
// @Success 201 {object} AgentResponse
// @Failure 403 {object} object "admin only"
// @Failure 409 {object} object "already exists"
// @Router /agents [post]
func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.authz.Require(p, auth.ActionManageAgents); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var req createAgentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	a, err := h.svc.Create(r.Context(), CreateInput{
		ID:    req.ID,
		Name:  req.Name,
		Email: req.Email,
		Role:  auth.Role(req.Role),
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(a))
}
