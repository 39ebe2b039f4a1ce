package shares

import (
	"context"

	"claims-review/internal/domain/claims"
)

// Repository es la colección "shares". La unicidad (claim, recipient) la garantiza el
// store: Create devuelve recordstore.ErrConflict si el par ya existe.
type Repository interface {
	Create(ctx context.Context, s Share) error
	GetByID(ctx context.Context, id string) (Share, error)
	Delete(ctx context.Context, id string) error
	// ListByRecipient ordena por created_at DESC.
	ListByRecipient(ctx context.Context, recipientID string) ([]Share, error)
	ListByClaim(ctx context.Context, claimID string) ([]Share, error)
}

// Notifier entrega notificaciones de shares nuevos por recipient.
// *pubsub.Hub[Notification] lo implementa.
type Notifier interface {
	Subscribe(recipientID string) (<-chan Notification, func())
}

// ClaimLookup evita importar el service de claims como dependencia concreta.
type ClaimLookup interface {
	Get(ctx context.Context, id string) (claims.Claim, error)
}

// AgentLookup devuelve el nombre para mostrar de un agente (ErrNotFound si no existe).
type AgentLookup interface {
	NameOf(ctx context.Context, id string) (string, error)
}
