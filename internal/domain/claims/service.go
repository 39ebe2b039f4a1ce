package claims

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/recordstore"
)

var (
	ErrInvalidInput     = apperr.New(apperr.CodeInvalidInput, "invalid claim input")
	ErrInvalidStatus    = apperr.New(apperr.CodeInvalidInput, "invalid claim status")
	ErrNegativeAmount   = apperr.New(apperr.CodeInvalidInput, "amount must be non-negative")
	ErrAmountPrecision  = apperr.New(apperr.CodeInvalidInput, "amount must have at most 2 decimal places")
	ErrAmountTooLarge   = apperr.New(apperr.CodeInvalidInput, "amount must be below 1000000000000")
	ErrNotFound         = apperr.New(apperr.CodeNotFound, "claim not found")
	ErrNotOwner         = apperr.New(apperr.CodeForbidden, "only the owning agent can edit this claim")
	ErrStoreUnavailable = apperr.New(apperr.CodeStoreUnavailable, "record store unavailable")
)

type Service struct {
	repo Repository
	now  func() time.Time
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		log:  logger.OrDiscard(log),
	}
}

type CreateInput struct {
	PolicyNumber  string
	ClaimantName  string
	ClaimantEmail string
	ClaimantPhone string
	IncidentDate  *time.Time
	Description   string
	Amount        *decimal.Decimal
	Status        Status // vacío => pending
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Claim, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Claim{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.PolicyNumber) == "" || strings.TrimSpace(in.ClaimantName) == "" {
		return Claim{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return Claim{}, ErrInvalidStatus
	}

	amount, err := toAmount(in.Amount)
	if err != nil {
		return Claim{}, err
	}

	now := s.now()
	c := Claim{
		ID:            uuid.NewString(),
		PolicyNumber:  strings.TrimSpace(in.PolicyNumber),
		ClaimantName:  strings.TrimSpace(in.ClaimantName),
		ClaimantEmail: strings.TrimSpace(in.ClaimantEmail),
		ClaimantPhone: strings.TrimSpace(in.ClaimantPhone),
		IncidentDate:  in.IncidentDate,
		Description:   strings.TrimSpace(in.Description),
		Amount:        amount,
		Status:        status,
		OwnerID:       ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Las escrituras no se reintentan: el caller decide.
	if err := s.repo.Create(ctx, c); err != nil {
		return Claim{}, s.mapErr(err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Claim, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Claim{}, ErrNotFound
	}

	var c Claim
	err := s.retryRead(ctx, "get", func() error {
		var err error
		c, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return Claim{}, s.mapErr(err)
	}
	return c, nil
}

// List devuelve claims filtrados; por defecto updated_at DESC.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Claim, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if f.Order == "" {
		f.Order = OrderUpdatedDesc
	}
	f.Search = strings.TrimSpace(f.Search)

	var items []Claim
	err := s.retryRead(ctx, "list", func() error {
		var err error
		items, err = s.repo.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, s.mapErr(err)
	}
	return items, nil
}

// UpdateStatus siempre escribe y refresca updated_at. La política de no-op vive en lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Claim, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Claim{}, ErrNotFound
	}
	if !status.Valid() {
		return Claim{}, ErrInvalidStatus
	}

	c, err := s.repo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return Claim{}, s.mapErr(err)
	}
	return c, nil
}

// BulkUpdateStatus aplica UpdateStatus a cada id, en secuencia. Un fallo no corta el resto.
// Ids repetidos se aplican una sola vez.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, status Status) (BulkResult, error) {
	if !status.Valid() {
		return BulkResult{}, ErrInvalidStatus
	}

	res := BulkResult{
		Updated:  make([]Claim, 0, len(ids)),
		Failures: make([]BulkFailure, 0),
	}
	seen := make(map[string]struct{}, len(ids))

	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		// Si el caller abandona, lo ya despachado queda aplicado; el resto se reporta.
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, BulkFailure{ID: id, Err: err})
			continue
		}

		c, err := s.UpdateStatus(ctx, id, status)
		if err != nil {
			res.Failures = append(res.Failures, BulkFailure{ID: id, Err: err})
			continue
		}
		res.Updated = append(res.Updated, c)
		res.UpdatedCount++
	}

	if len(res.Failures) > 0 {
		s.log.Info("bulk status update finished with failures", map[string]any{
			"status":   string(status),
			"updated":  res.UpdatedCount,
			"failures": len(res.Failures),
		})
	}
	return res, nil
}

// Optional distingue "no enviado" de "enviado como null" en un PATCH.
type Optional[T any] struct {
	Present bool
	Value   *T
}

type UpdateInput struct {
	PolicyNumber  *string
	ClaimantName  *string
	ClaimantEmail *string
	ClaimantPhone *string
	Description   *string
	IncidentDate  Optional[time.Time]
	Amount        Optional[decimal.Decimal]
}

// UpdateDetails edita campos del claim. Solo el agente dueño puede hacerlo.
func (s *Service) UpdateDetails(ctx context.Context, id, actorID string, in UpdateInput) (Claim, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Claim{}, err
	}
	if c.OwnerID != strings.TrimSpace(actorID) {
		return Claim{}, ErrNotOwner
	}

	if in.PolicyNumber != nil {
		v := strings.TrimSpace(*in.PolicyNumber)
		if v == "" {
			return Claim{}, ErrInvalidInput
		}
		c.PolicyNumber = v
	}
	if in.ClaimantName != nil {
		v := strings.TrimSpace(*in.ClaimantName)
		if v == "" {
			return Claim{}, ErrInvalidInput
		}
		c.ClaimantName = v
	}
	if in.ClaimantEmail != nil {
		c.ClaimantEmail = strings.TrimSpace(*in.ClaimantEmail)
	}
	if in.ClaimantPhone != nil {
		c.ClaimantPhone = strings.TrimSpace(*in.ClaimantPhone)
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.IncidentDate.Present {
		c.IncidentDate = in.IncidentDate.Value
	}
	if in.Amount.Present {
		amount, err := toAmount(in.Amount.Value)
		if err != nil {
			return Claim{}, err
		}
		c.Amount = amount
	}

	c.UpdatedAt = NextUpdatedAt(c.UpdatedAt, s.now())

	if err := s.repo.Update(ctx, c); err != nil {
		return Claim{}, s.mapErr(err)
	}
	return c, nil
}

// NextUpdatedAt garantiza que cada escritura avance updated_at (resolución de microsegundos,
// igual que Postgres), aun si el reloj no avanzó.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

// Misma precisión que la columna NUMERIC(14, 2): lo que se guarda es lo que se devuelve.
const amountScale = 2

var maxAmount = decimal.New(1, 12)

func toAmount(v *decimal.Decimal) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	if v.IsNegative() {
		return decimal.NullDecimal{}, ErrNegativeAmount
	}
	if !v.Equal(v.Round(amountScale)) {
		return decimal.NullDecimal{}, ErrAmountPrecision
	}
	if v.GreaterThanOrEqual(maxAmount) {
		return decimal.NullDecimal{}, ErrAmountTooLarge
	}
	return decimal.NewNullDecimal(v.Round(amountScale)), nil
}

// retryRead reintenta una sola vez cuando el store no está disponible. Solo para lecturas.
func (s *Service) retryRead(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil || !errors.Is(err, recordstore.ErrUnavailable) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return err
	}

	s.log.Warn("record store unavailable, retrying read", map[string]any{
		"op":    op,
		"error": err.Error(),
	})
	return fn()
}

func (s *Service) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, recordstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, recordstore.ErrUnavailable):
		return apperr.Wrap(apperr.CodeStoreUnavailable, ErrStoreUnavailable.Message, err)
	default:
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.Wrap(apperr.CodeInternal, "claims store error", err)
	}
}
