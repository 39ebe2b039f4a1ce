package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/ports/recordstore"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID  map[string]Claim
	order []string

	// failReads > 0 => las próximas N lecturas devuelven ErrUnavailable.
	failReads  int
	readCalls  int
	failWrites bool
	writeCalls int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Claim{}}
}

func (r *testRepo) Create(ctx context.Context, c Claim) error {
	r.writeCalls++
	if r.failWrites {
		return recordstore.ErrUnavailable
	}
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Claim, error) {
	r.readCalls++
	if r.failReads > 0 {
		r.failReads--
		return Claim{}, recordstore.ErrUnavailable
	}
	c, ok := r.byID[id]
	if !ok {
		return Claim{}, recordstore.ErrNotFound
	}
	return c, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Claim, error) {
	r.readCalls++
	if r.failReads > 0 {
		r.failReads--
		return nil, recordstore.ErrUnavailable
	}
	out := make([]Claim, 0)
	for _, id := range r.order {
		if c := r.byID[id]; f.Matches(c) {
			out = append(out, c)
		}
	}
	Sort(out, f.Order)
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, c Claim) error {
	r.writeCalls++
	if r.failWrites {
		return recordstore.ErrUnavailable
	}
	if _, ok := r.byID[c.ID]; !ok {
		return recordstore.ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (Claim, error) {
	r.writeCalls++
	if r.failWrites {
		return Claim{}, recordstore.ErrUnavailable
	}
	c, ok := r.byID[id]
	if !ok {
		return Claim{}, recordstore.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = NextUpdatedAt(c.UpdatedAt, at)
	r.byID[id] = c
	return c, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	c := &clock{t: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, repo
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) Claim {
	t.Helper()
	if in.PolicyNumber == "" {
		in.PolicyNumber = "POL-1"
	}
	if in.ClaimantName == "" {
		in.ClaimantName = "Robert Davis"
	}
	c, err := svc.Create(context.Background(), "admin-1", in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return c
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_DefaultsToPending(t *testing.T) {
	svc, _ := newTestService()

	amount := decimal.RequireFromString("1250.00")
	c := mustCreate(t, svc, CreateInput{
		PolicyNumber: "CLM-2023-001",
		ClaimantName: "Robert Davis",
		Description:  "Water damage from roof leak",
		Amount:       &amount,
	})

	if c.Status != StatusPending {
		t.Fatalf("expected pending, got %s", c.Status)
	}
	if c.ID == "" || c.OwnerID != "admin-1" {
		t.Fatalf("expected id and owner, got %+v", c)
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at on create")
	}
	if !c.Amount.Valid || !c.Amount.Decimal.Equal(amount) {
		t.Fatalf("expected amount 1250.00, got %v", c.Amount)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, repo := newTestService()
	neg := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing policy", CreateInput{ClaimantName: "x"}, ErrInvalidInput},
		{"missing claimant", CreateInput{PolicyNumber: "p"}, ErrInvalidInput},
		{"negative amount", CreateInput{PolicyNumber: "p", ClaimantName: "x", Amount: &neg}, ErrNegativeAmount},
		{"unknown status", CreateInput{PolicyNumber: "p", ClaimantName: "x", Status: "closed"}, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "admin-1", tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(repo.byID))
	}
}

func TestService_Create_AmountMatchesStoredPrecision(t *testing.T) {
	svc, repo := newTestService()

	for _, tc := range []struct {
		name string
		raw  string
		want error
	}{
		{"three decimals", "1.005", ErrAmountPrecision},
		{"too large", "1000000000000", ErrAmountTooLarge},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := decimal.RequireFromString(tc.raw)
			_, err := svc.Create(context.Background(), "admin-1", CreateInput{PolicyNumber: "p", ClaimantName: "x", Amount: &v})
			if apperr.CodeOf(err) != apperr.CodeInvalidInput || apperr.MessageOf(err) != apperr.MessageOf(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(repo.byID) != 0 {
		t.Fatalf("rejected amounts must not be stored")
	}

	// ceros de más y el máximo de la columna se aceptan
	for _, raw := range []string{"1250.500", "999999999999.99"} {
		v := decimal.RequireFromString(raw)
		c := mustCreate(t, svc, CreateInput{Amount: &v})
		if !c.Amount.Valid || !c.Amount.Decimal.Equal(v) {
			t.Fatalf("%s: unexpected amount %v", raw, c.Amount)
		}
		if got := repo.byID[c.ID].Amount.Decimal.String(); got != c.Amount.Decimal.String() {
			t.Fatalf("%s: stored %s, returned %s", raw, got, c.Amount.Decimal.String())
		}
	}

	// UpdateDetails usa la misma validación
	c := mustCreate(t, svc, CreateInput{})
	bad := decimal.RequireFromString("0.001")
	_, err := svc.UpdateDetails(context.Background(), c.ID, "admin-1", UpdateInput{Amount: Optional[decimal.Decimal]{Present: true, Value: &bad}})
	if apperr.MessageOf(err) != apperr.MessageOf(ErrAmountPrecision) {
		t.Fatalf("expected precision error on update, got %v", err)
	}
}

func TestService_Create_ExplicitStatus(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc, CreateInput{Status: StatusInReview})
	if c.Status != StatusInReview {
		t.Fatalf("expected inReview, got %s", c.Status)
	}
}

func TestService_List_SearchAndStatus(t *testing.T) {
	svc, _ := newTestService()

	mustCreate(t, svc, CreateInput{PolicyNumber: "CLM-001", ClaimantName: "Robert Davis", Description: "Water damage"})
	mustCreate(t, svc, CreateInput{PolicyNumber: "CLM-002", ClaimantName: "Emma Wilson", Description: "Car accident", Status: StatusInReview})
	mustCreate(t, svc, CreateInput{PolicyNumber: "WATER-9", ClaimantName: "James Miller", Description: "Laptop"})

	// Busca en los tres campos, sin importar mayúsculas.
	items, err := svc.List(context.Background(), ListFilter{Search: "WaTeR"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches for 'water', got %d", len(items))
	}

	items, err = svc.List(context.Background(), ListFilter{Status: StatusInReview})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 1 || items[0].ClaimantName != "Emma Wilson" {
		t.Fatalf("expected only Emma Wilson in review, got %+v", items)
	}

	if _, err := svc.List(context.Background(), ListFilter{Status: "bogus"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_List_DefaultOrderUpdatedDesc(t *testing.T) {
	svc, _ := newTestService()

	a := mustCreate(t, svc, CreateInput{ClaimantName: "A"})
	b := mustCreate(t, svc, CreateInput{ClaimantName: "B"})
	mustCreate(t, svc, CreateInput{ClaimantName: "C"})

	// tocar A lo mueve arriba
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusApproved); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	items, err := svc.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if items[0].ID != a.ID || items[2].ID != b.ID {
		t.Fatalf("unexpected order: %s, %s, %s", items[0].ClaimantName, items[1].ClaimantName, items[2].ClaimantName)
	}
	for i := 1; i < len(items); i++ {
		if items[i].UpdatedAt.After(items[i-1].UpdatedAt) {
			t.Fatalf("updated_at must be non-increasing")
		}
	}
}

func TestService_UpdateStatus_RefreshesUpdatedAt(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc, CreateInput{})

	updated, err := svc.UpdateStatus(context.Background(), c.ID, StatusArchived)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != StatusArchived {
		t.Fatalf("expected archived, got %s", updated.Status)
	}
	if !updated.UpdatedAt.After(c.UpdatedAt) {
		t.Fatalf("expected updated_at to move forward")
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updated_at must be >= created_at")
	}

	// archived no es terminal
	reopened, err := svc.UpdateStatus(context.Background(), c.ID, StatusPending)
	if err != nil || reopened.Status != StatusPending {
		t.Fatalf("expected reopen to pending, got %v / %v", reopened.Status, err)
	}
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdateStatus(context.Background(), "missing", StatusApproved)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_BulkUpdateStatus_PartialSuccess(t *testing.T) {
	svc, _ := newTestService()
	a := mustCreate(t, svc, CreateInput{})
	b := mustCreate(t, svc, CreateInput{})

	res, err := svc.BulkUpdateStatus(context.Background(), []string{a.ID, "does-not-exist", b.ID}, StatusApproved)
	if err != nil {
		t.Fatalf("BulkUpdateStatus error: %v", err)
	}
	if res.UpdatedCount != 2 {
		t.Fatalf("expected 2 updated, got %d", res.UpdatedCount)
	}
	if len(res.Failures) != 1 || res.Failures[0].ID != "does-not-exist" {
		t.Fatalf("expected exactly one failure for the bad id, got %+v", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, ErrNotFound) {
		t.Fatalf("expected not found failure, got %v", res.Failures[0].Err)
	}
	for _, c := range res.Updated {
		if c.Status != StatusApproved {
			t.Fatalf("expected approved in returned claims, got %s", c.Status)
		}
	}
}

func TestService_BulkUpdateStatus_DuplicateIDsAppliedOnce(t *testing.T) {
	svc, repo := newTestService()
	a := mustCreate(t, svc, CreateInput{})
	repo.writeCalls = 0

	res, err := svc.BulkUpdateStatus(context.Background(), []string{a.ID, a.ID}, StatusDenied)
	if err != nil {
		t.Fatalf("BulkUpdateStatus error: %v", err)
	}
	if res.UpdatedCount != 1 || repo.writeCalls != 1 {
		t.Fatalf("expected a single write, got count=%d writes=%d", res.UpdatedCount, repo.writeCalls)
	}
}

func TestService_BulkUpdateStatus_InvalidStatus(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.BulkUpdateStatus(context.Background(), []string{"x"}, "closed"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_Reads_RetryOnceOnUnavailable(t *testing.T) {
	svc, repo := newTestService()
	c := mustCreate(t, svc, CreateInput{})

	repo.failReads = 1
	repo.readCalls = 0
	if _, err := svc.Get(context.Background(), c.ID); err != nil {
		t.Fatalf("expected transparent retry, got %v", err)
	}
	if repo.readCalls != 2 {
		t.Fatalf("expected 2 read calls, got %d", repo.readCalls)
	}

	repo.failReads = 2
	repo.readCalls = 0
	_, err := svc.List(context.Background(), ListFilter{})
	if apperr.CodeOf(err) != apperr.CodeStoreUnavailable {
		t.Fatalf("expected store_unavailable after one retry, got %v", err)
	}
	if repo.readCalls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", repo.readCalls)
	}
}

func TestService_Writes_NeverRetried(t *testing.T) {
	svc, repo := newTestService()
	c := mustCreate(t, svc, CreateInput{})

	repo.failWrites = true
	repo.writeCalls = 0
	_, err := svc.UpdateStatus(context.Background(), c.ID, StatusApproved)
	if apperr.CodeOf(err) != apperr.CodeStoreUnavailable {
		t.Fatalf("expected store_unavailable, got %v", err)
	}
	if repo.writeCalls != 1 {
		t.Fatalf("writes must not be retried, got %d calls", repo.writeCalls)
	}
}

func TestService_UpdateDetails_OwnerOnly(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc, CreateInput{})

	desc := "Updated description"
	if _, err := svc.UpdateDetails(context.Background(), c.ID, "agent-2", UpdateInput{Description: &desc}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	amount := decimal.RequireFromString("99.90")
	updated, err := svc.UpdateDetails(context.Background(), c.ID, "admin-1", UpdateInput{
		Description: &desc,
		Amount:      Optional[decimal.Decimal]{Present: true, Value: &amount},
	})
	if err != nil {
		t.Fatalf("UpdateDetails error: %v", err)
	}
	if updated.Description != desc || !updated.Amount.Decimal.Equal(amount) {
		t.Fatalf("fields not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(c.UpdatedAt) {
		t.Fatalf("expected updated_at refresh")
	}

	// amount: null limpia el valor
	cleared, err := svc.UpdateDetails(context.Background(), c.ID, "admin-1", UpdateInput{
		Amount: Optional[decimal.Decimal]{Present: true},
	})
	if err != nil {
		t.Fatalf("UpdateDetails error: %v", err)
	}
	if cleared.Amount.Valid {
		t.Fatalf("expected amount cleared")
	}
}

func TestNextUpdatedAt_AlwaysMovesForward(t *testing.T) {
	prev := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := NextUpdatedAt(prev, prev); !got.After(prev) {
		t.Fatalf("expected strictly later timestamp")
	}
	later := prev.Add(time.Hour)
	if got := NextUpdatedAt(prev, later); !got.Equal(later) {
		t.Fatalf("expected now when it is later")
	}
}
