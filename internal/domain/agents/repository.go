package agents

import "context"

// Repository es la colección "profiles". Create devuelve recordstore.ErrConflict si
// el id o el email ya existen.
type Repository interface {
	Create(ctx context.Context, a Agent) error
	GetByID(ctx context.Context, id string) (Agent, error)
	// List ordena por nombre.
	List(ctx context.Context) ([]Agent, error)
}
