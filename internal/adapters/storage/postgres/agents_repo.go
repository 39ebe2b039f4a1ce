package postgres

import (
	"context"
	"database/sql"
	"strings"

	"claims-review/internal/domain/agents"
	"claims-review/internal/ports/auth"
)

// AgentsRepo persiste en la tabla profiles.
type AgentsRepo struct {
	db *sql.DB
}

func NewAgentsRepo(db *sql.DB) *AgentsRepo {
	return &AgentsRepo{db: db}
}

func (r *AgentsRepo) Create(ctx context.Context, a agents.Agent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, role, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, a.ID, a.Name, a.Email, string(a.Role), a.CreatedAt)
	return classify(err)
}

func (r *AgentsRepo) GetByID(ctx context.Context, id string) (agents.Agent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return agents.Agent{}, classify(sql.ErrNoRows)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, created_at
		FROM profiles
		WHERE id = $1
	`, id)

	a, err := scanAgent(row)
	if err != nil {
		return agents.Agent{}, classify(err)
	}
	return a, nil
}

func (r *AgentsRepo) List(ctx context.Context) ([]agents.Agent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, role, created_at
		FROM profiles
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]agents.Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, a)
	}
	return out, classify(rows.Err())
}

func scanAgent(s rowScanner) (agents.Agent, error) {
	var a agents.Agent
	var role string
	if err := s.Scan(&a.ID, &a.Name, &a.Email, &role, &a.CreatedAt); err != nil {
		return agents.Agent{}, err
	}
	a.Role = auth.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
