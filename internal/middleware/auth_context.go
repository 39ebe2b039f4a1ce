package middleware

import (
	"context"
	"net/http"
	"strings"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

var ErrUnauthorized = apperr.New(apperr.CodeUnauthorized, "unauthorized")

// AuthContext:
// - Si verifier != nil y viene Bearer token => Verify() y resuelve el perfil (rol + nombre).
// - Si verifier == nil => modo dev: X-Debug-User-ID se toma como user id ya verificado.
// - Si no hay principal, el request sigue igual; los handlers deciden si exigen auth.
// - Si el perfil no se pudo leer (store caído), corta con el error; no degrada a anónimo.
func AuthContext(verifier auth.AuthVerifier, resolver auth.PrincipalResolver, log logger.Logger) func(http.Handler) http.Handler {
	log = logger.OrDiscard(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityFrom(r, verifier)
			if !ok || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			p, err := resolver.Resolve(r.Context(), id)
			if err != nil {
				switch apperr.CodeOf(err) {
				case apperr.CodeUnauthorized, apperr.CodeNotFound:
					// Token válido pero sin perfil: se trata como anónimo.
					next.ServeHTTP(w, r)
				default:
					httpx.WriteError(w, r, log, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFrom(r *http.Request, verifier auth.AuthVerifier) (auth.Identity, bool) {
	// Dev mode: permitir inyectar user sin verifier
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID"))
		if uid == "" {
			return auth.Identity{}, false
		}
		return auth.Identity{UserID: uid}, true
	}

	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Identity{}, false
	}
	id, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.Identity{}, false
	}
	return id, true
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	if !ok || !p.Authenticated() {
		return auth.Principal{}, false
	}
	return p, true
}

// WithPrincipal se usa en tests de handlers.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// RequirePrincipal escribe 401 si no hay principal y devuelve ok=false.
func RequirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		httpx.WriteError(w, r, nil, ErrUnauthorized)
		return auth.Principal{}, false
	}
	return p, true
}

func BearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
