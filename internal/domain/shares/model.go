package shares

import (
	"time"

	"claims-review/internal/domain/claims"
)

// Share le da a RecipientID visibilidad sobre ClaimID. Como mucho uno por par
// (claim, recipient) y nunca consigo mismo.
type Share struct {
	ID          string
	ClaimID     string
	SharerID    string
	RecipientID string
	CreatedAt   time.Time
}

// SharedClaim es la vista "compartidos conmigo": el share con su claim y quién lo compartió.
type SharedClaim struct {
	Share      Share
	Claim      claims.Claim
	SharerName string
}

// Notification se emite cuando se crea un share; la key de entrega es RecipientID.
type Notification struct {
	ShareID     string    `json:"share_id"`
	ClaimID     string    `json:"claim_id"`
	SharerID    string    `json:"sharer_id"`
	RecipientID string    `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func NotificationFor(s Share) Notification {
	return Notification{
		ShareID:     s.ID,
		ClaimID:     s.ClaimID,
		SharerID:    s.SharerID,
		RecipientID: s.RecipientID,
		CreatedAt:   s.CreatedAt,
	}
}
