package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"claims-review/internal/domain/agents"
	"claims-review/internal/ports/recordstore"
)

type agentRepo struct {
	mu   sync.RWMutex
	byID map[string]agents.Agent
}

func NewAgentsRepo() agents.Repository {
	return &agentRepo{
		byID: make(map[string]agents.Agent),
	}
}

func (r *agentRepo) Create(ctx context.Context, a agents.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("agent id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return recordstore.ErrConflict
	}
	for _, x := range r.byID {
		if strings.EqualFold(x.Email, a.Email) {
			return recordstore.ErrConflict
		}
	}
	r.byID[a.ID] = a
	return nil
}

func (r *agentRepo) GetByID(ctx context.Context, id string) (agents.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return agents.Agent{}, recordstore.ErrNotFound
	}
	return a, nil
}

func (r *agentRepo) List(ctx context.Context) ([]agents.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]agents.Agent, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
