package agents

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"claims-review/internal/middleware"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

// RegisterAuthRoutes expone el Identity Provider. Sign-up crea además el perfil con el
// mismo id que el usuario del proveedor.
func RegisterAuthRoutes(r chi.Router, idp auth.IdentityProvider, svc *Service, log logger.Logger) {
	h := &authHandler{idp: idp, svc: svc, log: logger.OrDiscard(log)}

	r.Post("/auth/sign-in", h.signIn)
	r.Post("/auth/sign-up", h.signUp)
	r.Post("/auth/sign-out", h.signOut)
	r.Get("/auth/session", h.session)
}

type authHandler struct {
	idp auth.IdentityProvider
	svc *Service
	log logger.Logger
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type PrincipalResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

func ToPrincipalResponse(p auth.Principal) PrincipalResponse {
	return PrincipalResponse{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role}
}

type sessionResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time         `json:"expires_at"`
	User         PrincipalResponse `json:"user"`
}

// signIn godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signInRequest true "credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} object "invalid credentials or no profile"
// @Router /auth/sign-in [post]
func (h *authHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	sess, err := h.idp.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.svc.Resolve(r.Context(), sess.User)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		User:         ToPrincipalResponse(p),
	})
}

// signUp godoc
// @Summary Sign up
// @Description Registers the user with the identity provider and creates the profile.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signUpRequest true "new account"
// @Success 201 {object} AgentResponse
// @Router /auth/sign-up [post]
func (h *authHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	role := auth.Role(req.Role)
	if role == "" {
		role = auth.RoleAgent
	}
	if !role.Valid() {
		httpx.WriteError(w, r, h.log, ErrInvalidRole)
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, r, h.log, ErrInvalidInput)
		return
	}

	id, err := h.idp.SignUp(r.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	email := id.Email
	if email == "" {
		email = req.Email
	}
	a, err := h.svc.Create(r.Context(), CreateInput{ID: id.UserID, Name: req.Name, Email: email, Role: role})
	if err != nil {
		h.log.Error("identity created without profile", map[string]any{"user_id": id.UserID, "error": err.Error()})
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(a))
}

func (h *authHandler) signOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		httpx.WriteError(w, r, h.log, auth.ErrNoSession)
		return
	}
	if err := h.idp.SignOut(r.Context(), token); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} PrincipalResponse
// @Failure 401 {object} object "no session"
// @Router /auth/session [get]
func (h *authHandler) session(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		httpx.WriteError(w, r, h.log, auth.ErrNoSession)
		return
	}
	id, err := h.idp.CurrentSession(r.Context(), token)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.svc.Resolve(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ToPrincipalResponse(p))
}
