// Package access decide qué puede ver y hacer cada principal.
package access

import (
	"context"

	"claims-review/internal/domain/claims"
	"claims-review/internal/platform/apperr"
	"claims-review/internal/ports/auth"
)

// SharedLookup lo implementa *shares.Service.
type SharedLookup interface {
	SharedClaimIDs(ctx context.Context, recipientID string) (map[string]struct{}, error)
}

type Policy struct {
	shared SharedLookup
}

func NewPolicy(shared SharedLookup) *Policy {
	return &Policy{shared: shared}
}

// CanPerform no depende de ningún claim en particular.
func CanPerform(p auth.Principal, a auth.Action) bool {
	if !p.Authenticated() {
		return false
	}
	switch a {
	case auth.ActionCreateClaim, auth.ActionManageAgents, auth.ActionViewAllClaims:
		return p.Role == auth.RoleAdmin
	case auth.ActionShareClaim:
		return p.Role == auth.RoleAgent
	case auth.ActionViewClaim, auth.ActionChangeStatus, auth.ActionBulkUpdateStatus, auth.ActionViewDashboard:
		return true
	default:
		return false
	}
}

func (pol *Policy) Require(p auth.Principal, a auth.Action) error {
	if !p.Authenticated() {
		return apperr.New(apperr.CodeUnauthorized, "unauthorized")
	}
	if !CanPerform(p, a) {
		return apperr.New(apperr.CodeForbidden, "not allowed to "+string(a))
	}
	return nil
}

// ScopeClaims: admin ve todo; agent ve los propios más los compartidos con él.
// Conserva el orden de entrada.
func (pol *Policy) ScopeClaims(ctx context.Context, p auth.Principal, items []claims.Claim) ([]claims.Claim, error) {
	if !p.Authenticated() {
		return []claims.Claim{}, nil
	}
	if CanPerform(p, auth.ActionViewAllClaims) {
		return items, nil
	}

	shared, err := pol.sharedWith(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	out := make([]claims.Claim, 0, len(items))
	for _, c := range items {
		if visible(p, c, shared) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (pol *Policy) CanView(ctx context.Context, p auth.Principal, c claims.Claim) (bool, error) {
	if !p.Authenticated() {
		return false, nil
	}
	if CanPerform(p, auth.ActionViewAllClaims) || c.OwnerID == p.ID {
		return true, nil
	}
	shared, err := pol.sharedWith(ctx, p.ID)
	if err != nil {
		return false, err
	}
	_, ok := shared[c.ID]
	return ok, nil
}

func (pol *Policy) sharedWith(ctx context.Context, id string) (map[string]struct{}, error) {
	if pol.shared == nil {
		return map[string]struct{}{}, nil
	}
	return pol.shared.SharedClaimIDs(ctx, id)
}

func visible(p auth.Principal, c claims.Claim, shared map[string]struct{}) bool {
	if c.OwnerID == p.ID {
		return true
	}
	_, ok := shared[c.ID]
	return ok
}

const (
	PathAdminDashboard = "/dashboard"
	PathAgentDashboard = "/agent-dashboard"
	PathClaims         = "/claims"
	PathSharedClaims   = "/shared-claims"
	PathAgents         = "/agents"
)

// NavigationTarget es a dónde va cada rol al iniciar sesión.
func NavigationTarget(role auth.Role) string {
	if role == auth.RoleAdmin {
		return PathAdminDashboard
	}
	return PathAgentDashboard
}

// NavigationTargets lista las secciones permitidas para el rol, la de inicio primero.
func NavigationTargets(role auth.Role) []string {
	switch role {
	case auth.RoleAdmin:
		return []string{PathAdminDashboard, PathClaims, PathAgents}
	case auth.RoleAgent:
		return []string{PathAgentDashboard, PathClaims, PathSharedClaims}
	default:
		return []string{}
	}
}
