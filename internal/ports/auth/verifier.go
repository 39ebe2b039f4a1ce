package auth

import "context"

// AuthVerifier verifica un token y devuelve la identidad o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// PrincipalResolver completa la identidad con rol y nombre del perfil.
type PrincipalResolver interface {
	Resolve(ctx context.Context, id Identity) (Principal, error)
}

// IdentityProvider es el colaborador externo de autenticación.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, in SignUpInput) (Identity, error)
	SignOut(ctx context.Context, accessToken string) error
	// CurrentSession devuelve la identidad del token; ErrNoSession si no hay sesión válida.
	CurrentSession(ctx context.Context, accessToken string) (Identity, error)
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Role     Role
}
