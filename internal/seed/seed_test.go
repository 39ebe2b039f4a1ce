package seed

import (
	"context"
	"testing"

	"claims-review/internal/adapters/storage/memory"
	"claims-review/internal/domain/claims"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	agentRepo := memory.NewAgentsRepo()
	claimRepo := memory.NewClaimsRepo()
	d := Demo()

	if err := Apply(ctx, d, agentRepo, claimRepo, nil); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if err := Apply(ctx, d, agentRepo, claimRepo, nil); err != nil {
		t.Fatalf("second Apply error: %v", err)
	}

	items, err := claimRepo.List(ctx, claims.ListFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != len(d.Claims) {
		t.Fatalf("expected %d claims, got %d", len(d.Claims), len(items))
	}
	ags, _ := agentRepo.List(ctx)
	if len(ags) != len(d.Agents) {
		t.Fatalf("expected %d agents, got %d", len(d.Agents), len(ags))
	}
}

func TestDemo_Consistent(t *testing.T) {
	d := Demo()
	owners := map[string]bool{}
	for _, a := range d.Agents {
		owners[a.ID] = true
	}
	for _, c := range d.Claims {
		if !owners[c.OwnerID] {
			t.Errorf("claim %s owned by unknown agent %s", c.ID, c.OwnerID)
		}
		if !c.Status.Valid() {
			t.Errorf("claim %s has invalid status %s", c.ID, c.Status)
		}
		if c.UpdatedAt.Before(c.CreatedAt) {
			t.Errorf("claim %s updated before created", c.ID)
		}
	}
}
