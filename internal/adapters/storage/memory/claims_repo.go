package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"claims-review/internal/domain/claims"
	"claims-review/internal/ports/recordstore"
)

type claimRepo struct {
	mu    sync.RWMutex
	byID  map[string]claims.Claim
	order []string // orden de inserción, para desempates estables
}

func NewClaimsRepo() claims.Repository {
	return &claimRepo{
		byID: make(map[string]claims.Claim),
	}
}

func (r *claimRepo) Create(ctx context.Context, c claims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("claim id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return recordstore.ErrConflict
	}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *claimRepo) GetByID(ctx context.Context, id string) (claims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return claims.Claim{}, recordstore.ErrNotFound
	}
	return c, nil
}

func (r *claimRepo) List(ctx context.Context, f claims.ListFilter) ([]claims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]claims.Claim, 0, len(r.order))
	for _, id := range r.order {
		c := r.byID[id]
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	claims.Sort(out, f.Order)
	return out, nil
}

func (r *claimRepo) Update(ctx context.Context, c claims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[c.ID]
	if !exists {
		return recordstore.ErrNotFound
	}
	c.UpdatedAt = claims.NextUpdatedAt(prev.UpdatedAt, c.UpdatedAt)
	r.byID[c.ID] = c
	return nil
}

func (r *claimRepo) UpdateStatus(ctx context.Context, id string, status claims.Status, at time.Time) (claims.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return claims.Claim{}, recordstore.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = claims.NextUpdatedAt(c.UpdatedAt, at)
	r.byID[id] = c
	return c, nil
}
