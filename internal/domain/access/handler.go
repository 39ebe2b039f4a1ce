package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"claims-review/internal/middleware"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/ports/auth"
)

func RegisterRoutes(r chi.Router) {
	r.Get("/me", me)
}

type meResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        auth.Role `json:"role"`
	Home        string    `json:"home"`
	Navigation  []string  `json:"navigation"`
	Permissions []string  `json:"permissions"`
}

var allActions = []auth.Action{
	auth.ActionCreateClaim,
	auth.ActionManageAgents,
	auth.ActionViewAllClaims,
	auth.ActionShareClaim,
	auth.ActionViewClaim,
	auth.ActionChangeStatus,
	auth.ActionBulkUpdateStatus,
	auth.ActionViewDashboard,
}

// me godoc
// @Summary Current principal
// @Description Profile, home route and permitted actions for the caller.
// @Tags access
// @Produce json
// @Success 200 {object} meResponse
// @Failure 401 {object} object "unauthorized"
// @Router /me [get]
func me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}

	perms := make([]string, 0, len(allActions))
	for _, a := range allActions {
		if CanPerform(p, a) {
			perms = append(perms, string(a))
		}
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Role:        p.Role,
		Home:        NavigationTarget(p.Role),
		Navigation:  NavigationTargets(p.Role),
		Permissions: perms,
	})
}
