package claims

import (
	"context"
	"time"
)

// Repository es la colección "claims" del Record Store.
// Los adapters devuelven errores de recordstore (ErrNotFound, ErrUnavailable).
type Repository interface {
	Create(ctx context.Context, c Claim) error
	GetByID(ctx context.Context, id string) (Claim, error)
	List(ctx context.Context, f ListFilter) ([]Claim, error)
	Update(ctx context.Context, c Claim) error

	// UpdateStatus setea status y updated_at (sin retroceder updated_at) y devuelve el registro.
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (Claim, error)
}
