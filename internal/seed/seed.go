// Package seed carga los agentes y claims de demo.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"claims-review/internal/domain/agents"
	"claims-review/internal/domain/claims"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
	"claims-review/internal/ports/recordstore"
)

type Data struct {
	Agents []agents.Agent
	Claims []claims.Claim
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func demoClaim(id, number, holder, amount string, st claims.Status, submitted, updated, desc, owner string) claims.Claim {
	return claims.Claim{
		ID:           id,
		PolicyNumber: number,
		ClaimantName: holder,
		Description:  desc,
		Amount:       decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Status:       st,
		OwnerID:      owner,
		CreatedAt:    day(submitted),
		UpdatedAt:    day(updated),
	}
}

// Demo: un admin, tres agentes y ocho claims en todos los estados.
func Demo() Data {
	created := day("2023-08-01")
	return Data{
		Agents: []agents.Agent{
			{ID: "1", Name: "John Smith", Email: "john@example.com", Role: auth.RoleAdmin, CreatedAt: created},
			{ID: "2", Name: "Sarah Johnson", Email: "sarah@example.com", Role: auth.RoleAgent, CreatedAt: created},
			{ID: "3", Name: "Michael Brown", Email: "michael@example.com", Role: auth.RoleAgent, CreatedAt: created},
			{ID: "4", Name: "Jessica Williams", Email: "jessica@example.com", Role: auth.RoleAgent, CreatedAt: created},
		},
		Claims: []claims.Claim{
			demoClaim("1", "CLM-2023-001", "Robert Davis", "1250.00", claims.StatusPending, "2023-10-15", "2023-10-15", "Water damage from roof leak", "1"),
			demoClaim("2", "CLM-2023-002", "Emma Wilson", "3500.00", claims.StatusInReview, "2023-10-10", "2023-10-17", "Car accident - front bumper damage", "2"),
			demoClaim("3", "CLM-2023-003", "James Miller", "750.00", claims.StatusApproved, "2023-09-28", "2023-10-14", "Stolen laptop - business property", "1"),
			demoClaim("4", "CLM-2023-004", "Olivia Taylor", "5000.00", claims.StatusDenied, "2023-09-20", "2023-10-12", "Medical expense claim", "3"),
			demoClaim("5", "CLM-2023-005", "Noah Johnson", "2200.00", claims.StatusArchived, "2023-08-05", "2023-09-10", "Home theft - jewelry items", "2"),
			demoClaim("6", "CLM-2023-006", "Sophia Martinez", "1800.00", claims.StatusPending, "2023-10-18", "2023-10-18", "Fence damage from storm", "4"),
			demoClaim("7", "CLM-2023-007", "Benjamin Anderson", "3200.00", claims.StatusInReview, "2023-10-12", "2023-10-16", "Vehicle vandalism claim", "1"),
			demoClaim("8", "CLM-2023-008", "Isabella Thomas", "950.00", claims.StatusApproved, "2023-10-05", "2023-10-17", "Cracked smartphone screen", "3"),
		},
	}
}

// Apply inserta d en los repos. Es idempotente: lo que ya existe se saltea.
func Apply(ctx context.Context, d Data, agentRepo agents.Repository, claimRepo claims.Repository, log logger.Logger) error {
	log = logger.OrDiscard(log)
	var added, skipped int

	for _, a := range d.Agents {
		switch err := agentRepo.Create(ctx, a); {
		case err == nil:
			added++
		case errors.Is(err, recordstore.ErrConflict):
			skipped++
		default:
			return fmt.Errorf("seed agent %s: %w", a.ID, err)
		}
	}
	for _, c := range d.Claims {
		switch err := claimRepo.Create(ctx, c); {
		case err == nil:
			added++
		case errors.Is(err, recordstore.ErrConflict):
			skipped++
		default:
			return fmt.Errorf("seed claim %s: %w", c.ID, err)
		}
	}

	log.Info("demo data loaded", map[string]any{"added": added, "skipped": skipped})
	return nil
}
