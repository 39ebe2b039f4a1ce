// Package lifecycle aplica transiciones de status sobre claims.
// Cualquier par de estados distintos es una transición válida; pedir el estado actual es un no-op.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"claims-review/internal/domain/claims"
)

// ClaimStore lo implementa *claims.Service.
type ClaimStore interface {
	Get(ctx context.Context, id string) (claims.Claim, error)
	UpdateStatus(ctx context.Context, id string, status claims.Status) (claims.Claim, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status claims.Status) (claims.BulkResult, error)
}

// Guard decide si el caller puede tocar un claim concreto (visibilidad).
type Guard func(c claims.Claim) error

type Engine struct {
	store ClaimStore
}

func NewEngine(store ClaimStore) *Engine {
	return &Engine{store: store}
}

// Transition lleva c a target. Si ya está en target no escribe ni toca updated_at;
// changed=false en ese caso.
func (e *Engine) Transition(ctx context.Context, c claims.Claim, target claims.Status) (claims.Claim, bool, error) {
	if !target.Valid() {
		return claims.Claim{}, false, claims.ErrInvalidStatus
	}
	if c.Status == target {
		return c, false, nil
	}
	updated, err := e.store.UpdateStatus(ctx, c.ID, target)
	if err != nil {
		return claims.Claim{}, false, err
	}
	return updated, true, nil
}

// TransitionByID carga el claim, aplica guard (si hay) y transiciona.
func (e *Engine) TransitionByID(ctx context.Context, id string, target claims.Status, guard Guard) (claims.Claim, bool, error) {
	if !target.Valid() {
		return claims.Claim{}, false, claims.ErrInvalidStatus
	}
	c, err := e.store.Get(ctx, id)
	if err != nil {
		return claims.Claim{}, false, err
	}
	if guard != nil {
		if err := guard(c); err != nil {
			return claims.Claim{}, false, err
		}
	}
	return e.Transition(ctx, c, target)
}

// BulkReport es el resultado de una actualización masiva.
type BulkReport struct {
	Target       claims.Status
	Requested    int
	Updated      []claims.Claim
	UpdatedCount int
	Unchanged    []string
	Failures     []claims.BulkFailure
}

// Summary es el mensaje para la UI ("Updated 3 claims to approved").
func (r BulkReport) Summary() string {
	noun := "claims"
	if r.UpdatedCount == 1 {
		noun = "claim"
	}
	msg := fmt.Sprintf("Updated %d %s to %s", r.UpdatedCount, noun, r.Target)
	if n := len(r.Failures); n > 0 {
		msg += fmt.Sprintf(" (%d failed)", n)
	}
	return msg
}

// BulkTransition lleva cada id a target en secuencia. Ids inexistentes o rechazados por
// guard quedan en Failures; los que ya estaban en target en Unchanged. Lo ya aplicado
// no se revierte si algo falla después.
func (e *Engine) BulkTransition(ctx context.Context, ids []string, target claims.Status, guard Guard) (BulkReport, error) {
	if !target.Valid() {
		return BulkReport{}, claims.ErrInvalidStatus
	}

	rep := BulkReport{
		Target:    target,
		Updated:   make([]claims.Claim, 0, len(ids)),
		Unchanged: make([]string, 0),
		Failures:  make([]claims.BulkFailure, 0),
	}

	seen := make(map[string]struct{}, len(ids))
	pending := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rep.Requested++

		c, err := e.store.Get(ctx, id)
		if err != nil {
			rep.Failures = append(rep.Failures, claims.BulkFailure{ID: id, Err: err})
			continue
		}
		if guard != nil {
			if err := guard(c); err != nil {
				rep.Failures = append(rep.Failures, claims.BulkFailure{ID: id, Err: err})
				continue
			}
		}
		if c.Status == target {
			rep.Unchanged = append(rep.Unchanged, id)
			continue
		}
		pending = append(pending, id)
	}

	if len(pending) == 0 {
		return rep, nil
	}

	res, err := e.store.BulkUpdateStatus(ctx, pending, target)
	if err != nil {
		return BulkReport{}, err
	}
	rep.Updated = append(rep.Updated, res.Updated...)
	rep.UpdatedCount = res.UpdatedCount
	rep.Failures = append(rep.Failures, res.Failures...)
	return rep, nil
}
