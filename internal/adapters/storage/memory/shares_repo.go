package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"claims-review/internal/domain/shares"
	"claims-review/internal/ports/recordstore"
)

// Publisher recibe cada share insertado. *pubsub.Hub[shares.Notification] lo implementa.
type Publisher interface {
	Publish(key string, v shares.Notification) int
}

type shareRepo struct {
	mu     sync.RWMutex
	byID   map[string]shares.Share
	byPair map[pairKey]string
	pub    Publisher
}

type pairKey struct {
	claimID     string
	recipientID string
}

// NewSharesRepo: pub puede ser nil (sin notificaciones).
func NewSharesRepo(pub Publisher) shares.Repository {
	return &shareRepo{
		byID:   make(map[string]shares.Share),
		byPair: make(map[pairKey]string),
		pub:    pub,
	}
}

// Create chequea e inserta bajo el mismo lock: de dos Create concurrentes para el
// mismo par, exactamente uno gana.
func (r *shareRepo) Create(ctx context.Context, s shares.Share) error {
	r.mu.Lock()
	if s.ID == "" {
		r.mu.Unlock()
		return errors.New("share id required")
	}
	k := pairKey{claimID: s.ClaimID, recipientID: s.RecipientID}
	if _, exists := r.byPair[k]; exists {
		r.mu.Unlock()
		return recordstore.ErrConflict
	}
	if _, exists := r.byID[s.ID]; exists {
		r.mu.Unlock()
		return recordstore.ErrConflict
	}
	r.byID[s.ID] = s
	r.byPair[k] = s.ID
	r.mu.Unlock()

	if r.pub != nil {
		r.pub.Publish(s.RecipientID, shares.NotificationFor(s))
	}
	return nil
}

func (r *shareRepo) GetByID(ctx context.Context, id string) (shares.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return shares.Share{}, recordstore.ErrNotFound
	}
	return s, nil
}

func (r *shareRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return recordstore.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byPair, pairKey{claimID: s.ClaimID, recipientID: s.RecipientID})
	return nil
}

func (r *shareRepo) ListByRecipient(ctx context.Context, recipientID string) ([]shares.Share, error) {
	return r.list(func(s shares.Share) bool { return s.RecipientID == recipientID }), nil
}

func (r *shareRepo) ListByClaim(ctx context.Context, claimID string) ([]shares.Share, error) {
	return r.list(func(s shares.Share) bool { return s.ClaimID == claimID }), nil
}

// list devuelve por created_at DESC (desempate por id para que sea determinístico).
func (r *shareRepo) list(keep func(shares.Share) bool) []shares.Share {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shares.Share, 0)
	for _, s := range r.byID {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
