package gotrue

import (
	"context"

	"claims-review/internal/ports/auth"
)

// Verifier implementa auth.AuthVerifier preguntándole al proveedor por el token.
// Se usa cuando no hay secreto JWT local.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if v == nil || v.client == nil {
		return auth.Identity{}, ErrNotConfigured
	}
	return v.client.CurrentSession(ctx, token)
}
