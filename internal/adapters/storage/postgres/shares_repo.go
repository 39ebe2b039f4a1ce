package postgres

import (
	"context"
	"database/sql"
	"strings"

	"claims-review/internal/domain/shares"
)

// SharesRepo: la unicidad (claim, recipient) la garantiza shares_claim_recipient_key.
// Las notificaciones salen del trigger de la tabla, no de acá.
type SharesRepo struct {
	db *sql.DB
}

func NewSharesRepo(db *sql.DB) *SharesRepo {
	return &SharesRepo{db: db}
}

func (r *SharesRepo) Create(ctx context.Context, s shares.Share) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shares (id, claim_id, sharer_id, recipient_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, s.ID, s.ClaimID, s.SharerID, s.RecipientID, s.CreatedAt)
	return classify(err)
}

func (r *SharesRepo) GetByID(ctx context.Context, id string) (shares.Share, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return shares.Share{}, classify(sql.ErrNoRows)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, claim_id, sharer_id, recipient_id, created_at
		FROM shares
		WHERE id = $1
	`, id)
	s, err := scanShare(row)
	if err != nil {
		return shares.Share{}, classify(err)
	}
	return s, nil
}

func (r *SharesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return classify(sql.ErrNoRows)
	}
	return nil
}

func (r *SharesRepo) ListByRecipient(ctx context.Context, recipientID string) ([]shares.Share, error) {
	return r.list(ctx, `
		SELECT id, claim_id, sharer_id, recipient_id, created_at
		FROM shares
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id ASC
	`, recipientID)
}

func (r *SharesRepo) ListByClaim(ctx context.Context, claimID string) ([]shares.Share, error) {
	return r.list(ctx, `
		SELECT id, claim_id, sharer_id, recipient_id, created_at
		FROM shares
		WHERE claim_id = $1
		ORDER BY created_at DESC, id ASC
	`, claimID)
}

func (r *SharesRepo) list(ctx context.Context, query, arg string) ([]shares.Share, error) {
	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(arg))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]shares.Share, 0)
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, s)
	}
	return out, classify(rows.Err())
}

func scanShare(row rowScanner) (shares.Share, error) {
	var s shares.Share
	if err := row.Scan(&s.ID, &s.ClaimID, &s.SharerID, &s.RecipientID, &s.CreatedAt); err != nil {
		return shares.Share{}, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
