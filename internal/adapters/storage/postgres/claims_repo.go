package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"claims-review/internal/domain/claims"
)

type ClaimsRepo struct {
	db *sql.DB
}

func NewClaimsRepo(db *sql.DB) *ClaimsRepo {
	return &ClaimsRepo{db: db}
}

const claimColumns = `
	id, policy_number, claimant_name, claimant_email, claimant_phone,
	incident_date, description, amount, status, owner_id,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(s rowScanner) (claims.Claim, error) {
	var c claims.Claim
	var status string
	var incident sql.NullTime

	if err := s.Scan(
		&c.ID,
		&c.PolicyNumber,
		&c.ClaimantName,
		&c.ClaimantEmail,
		&c.ClaimantPhone,
		&incident,
		&c.Description,
		&c.Amount,
		&status,
		&c.OwnerID,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return claims.Claim{}, err
	}

	c.Status = claims.Status(status)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	if incident.Valid {
		t := incident.Time.UTC()
		c.IncidentDate = &t
	}
	return c, nil
}

func (r *ClaimsRepo) Create(ctx context.Context, c claims.Claim) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		c.ID,
		c.PolicyNumber,
		c.ClaimantName,
		c.ClaimantEmail,
		c.ClaimantPhone,
		toNullTime(c.IncidentDate),
		c.Description,
		c.Amount,
		string(c.Status),
		c.OwnerID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return classify(err)
}

func (r *ClaimsRepo) GetByID(ctx context.Context, id string) (claims.Claim, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return claims.Claim{}, classify(sql.ErrNoRows)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id)
	c, err := scanClaim(row)
	if err != nil {
		return claims.Claim{}, classify(err)
	}
	return c, nil
}

func (r *ClaimsRepo) List(ctx context.Context, f claims.ListFilter) ([]claims.Claim, error) {
	query, args := buildListQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]claims.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, c)
	}
	return out, classify(rows.Err())
}

// buildListQuery traduce ListFilter a SQL. La búsqueda es ILIKE sobre los tres campos.
func buildListQuery(f claims.ListFilter) (string, []any) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, likePattern(q))
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(claimant_name ILIKE $%d OR policy_number ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(claimColumns)
	b.WriteString(" FROM claims")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderClause(f.Order))
	return b.String(), args
}

func orderClause(o claims.Order) string {
	switch o {
	case claims.OrderUpdatedAsc:
		return "updated_at ASC, created_at ASC"
	case claims.OrderCreatedDesc:
		return "created_at DESC, updated_at DESC"
	default:
		return "updated_at DESC, created_at ASC"
	}
}

// likePattern escapa los comodines de LIKE y envuelve en %...%.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// Update reescribe los campos editables. updated_at nunca retrocede.
func (r *ClaimsRepo) Update(ctx context.Context, c claims.Claim) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claims
		SET
			policy_number = $2,
			claimant_name = $3,
			claimant_email = $4,
			claimant_phone = $5,
			incident_date = $6,
			description = $7,
			amount = $8,
			updated_at = GREATEST($9::timestamptz, updated_at + interval '1 microsecond')
		WHERE id = $1
	`,
		c.ID,
		c.PolicyNumber,
		c.ClaimantName,
		c.ClaimantEmail,
		c.ClaimantPhone,
		toNullTime(c.IncidentDate),
		c.Description,
		c.Amount,
		c.UpdatedAt,
	)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return classify(sql.ErrNoRows)
	}
	return nil
}

func (r *ClaimsRepo) UpdateStatus(ctx context.Context, id string, status claims.Status, at time.Time) (claims.Claim, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE claims
		SET
			status = $2,
			updated_at = GREATEST($3::timestamptz, updated_at + interval '1 microsecond')
		WHERE id = $1
		RETURNING `+claimColumns,
		id, string(status), at,
	)
	c, err := scanClaim(row)
	if err != nil {
		return claims.Claim{}, classify(err)
	}
	return c, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
