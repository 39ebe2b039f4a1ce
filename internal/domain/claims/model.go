package claims

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status del ciclo de revisión. Cualquier transición entre estados distintos es válida.
// @Enum pending, inReview, approved, denied, archived
type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "inReview"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusArchived Status = "archived"
)

// Statuses en el orden en que se muestran (tabs, dashboard).
var Statuses = []Status{StatusPending, StatusInReview, StatusApproved, StatusDenied, StatusArchived}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus es case-sensitive: "inReview" sí, "in_review" no.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Claim es un reclamo de seguro. Nunca se borra: archivar es un status.
type Claim struct {
	ID string

	PolicyNumber  string
	ClaimantName  string
	ClaimantEmail string // opcional
	ClaimantPhone string // opcional

	IncidentDate *time.Time
	Description  string

	// Amount null o >= 0.
	Amount decimal.NullDecimal

	Status  Status
	OwnerID string // agente que lo creó

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order string

const (
	OrderUpdatedDesc Order = "updated_desc"
	OrderUpdatedAsc  Order = "updated_asc"
	OrderCreatedDesc Order = "created_desc"
)

func ParseOrder(raw string) (Order, error) {
	switch o := Order(strings.TrimSpace(raw)); o {
	case "":
		return OrderUpdatedDesc, nil
	case OrderUpdatedDesc, OrderUpdatedAsc, OrderCreatedDesc:
		return o, nil
	default:
		return "", ErrInvalidInput
	}
}

// ListFilter: campos vacíos = sin restricción.
type ListFilter struct {
	Status  Status
	Search  string // substring case-insensitive en claimant, policy number, description
	OwnerID string
	Order   Order
}

// Matches aplica el filtro en memoria. Los adapters SQL lo traducen a WHERE.
func (f ListFilter) Matches(c Claim) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.OwnerID != "" && c.OwnerID != f.OwnerID {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.ClaimantName), q) ||
		strings.Contains(strings.ToLower(c.PolicyNumber), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}

// Sort ordena in-place. Es estable: en empate se respeta el orden de entrada.
func Sort(items []Claim, order Order) {
	switch order {
	case OrderUpdatedAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt.Before(items[j].UpdatedAt)
		})
	case OrderCreatedDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		})
	}
}

// BulkFailure asocia el error con el id que lo originó.
type BulkFailure struct {
	ID  string
	Err error
}

type BulkResult struct {
	UpdatedCount int
	Updated      []Claim
	Failures     []BulkFailure
}
