package shares

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/recordstore"
)

var (
	ErrInvalidShare      = apperr.New(apperr.CodeInvalidShare, "a claim cannot be shared with its own sharer")
	ErrDuplicateShare    = apperr.New(apperr.CodeDuplicateShare, "claim is already shared with this agent")
	ErrClaimNotFound     = apperr.New(apperr.CodeNotFound, "claim not found")
	ErrRecipientNotFound = apperr.New(apperr.CodeNotFound, "recipient not found")
	ErrShareNotFound     = apperr.New(apperr.CodeNotFound, "share not found")
	ErrNotSharer         = apperr.New(apperr.CodeForbidden, "only the sharer can remove a share")
	ErrNoNotifier        = apperr.New(apperr.CodeInternal, "share notifications are not configured")
	ErrStoreUnavailable  = apperr.New(apperr.CodeStoreUnavailable, "record store unavailable")
)

type Service struct {
	repo     Repository
	claims   ClaimLookup
	agents   AgentLookup
	notifier Notifier
	now      func() time.Time
	log      logger.Logger
}

func NewService(repo Repository, claimLookup ClaimLookup, agentLookup AgentLookup, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		claims:   claimLookup,
		agents:   agentLookup,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		log:      logger.OrDiscard(log),
	}
}

// Share registra que sharerID compartió claimID con recipientID.
func (s *Service) Share(ctx context.Context, claimID, sharerID, recipientID string) (Share, error) {
	claimID = strings.TrimSpace(claimID)
	sharerID = strings.TrimSpace(sharerID)
	recipientID = strings.TrimSpace(recipientID)

	if sharerID == "" || recipientID == "" {
		return Share{}, apperr.New(apperr.CodeInvalidShare, "sharer and recipient are required")
	}
	if sharerID == recipientID {
		return Share{}, ErrInvalidShare
	}

	if _, err := s.claims.Get(ctx, claimID); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return Share{}, ErrClaimNotFound
		}
		return Share{}, err
	}
	if _, err := s.agents.NameOf(ctx, recipientID); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return Share{}, ErrRecipientNotFound
		}
		return Share{}, err
	}

	sh := Share{
		ID:          uuid.NewString(),
		ClaimID:     claimID,
		SharerID:    sharerID,
		RecipientID: recipientID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, sh); err != nil {
		if errors.Is(err, recordstore.ErrConflict) {
			return Share{}, ErrDuplicateShare
		}
		return Share{}, mapErr(err)
	}

	s.log.Info("claim shared", map[string]any{
		"share_id":     sh.ID,
		"claim_id":     sh.ClaimID,
		"sharer_id":    sh.SharerID,
		"recipient_id": sh.RecipientID,
	})
	return sh, nil
}

// Unshare borra el share. Solo quien lo creó puede hacerlo.
func (s *Service) Unshare(ctx context.Context, shareID, actorID string) error {
	sh, err := s.repo.GetByID(ctx, strings.TrimSpace(shareID))
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return ErrShareNotFound
		}
		return mapErr(err)
	}
	if sh.SharerID != strings.TrimSpace(actorID) {
		return ErrNotSharer
	}
	if err := s.repo.Delete(ctx, sh.ID); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return ErrShareNotFound
		}
		return mapErr(err)
	}
	return nil
}

// ListSharedWithMe arma la vista de claims compartidos con recipientID, más nuevos
// primero. Shares cuyo claim ya no existe se omiten.
func (s *Service) ListSharedWithMe(ctx context.Context, recipientID string) ([]SharedClaim, error) {
	items, err := s.repo.ListByRecipient(ctx, strings.TrimSpace(recipientID))
	if err != nil {
		return nil, mapErr(err)
	}

	names := make(map[string]string)
	out := make([]SharedClaim, 0, len(items))
	for _, sh := range items {
		c, err := s.claims.Get(ctx, sh.ClaimID)
		if err != nil {
			if apperr.CodeOf(err) == apperr.CodeNotFound {
				s.log.Warn("dangling share skipped", map[string]any{"share_id": sh.ID, "claim_id": sh.ClaimID})
				continue
			}
			return nil, err
		}

		name, ok := names[sh.SharerID]
		if !ok {
			name, err = s.agents.NameOf(ctx, sh.SharerID)
			if err != nil {
				if apperr.CodeOf(err) != apperr.CodeNotFound {
					return nil, err
				}
				name = ""
			}
			names[sh.SharerID] = name
		}

		out = append(out, SharedClaim{Share: sh, Claim: c, SharerName: name})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Share.CreatedAt.After(out[j].Share.CreatedAt)
	})
	return out, nil
}

func (s *Service) ListForClaim(ctx context.Context, claimID string) ([]Share, error) {
	items, err := s.repo.ListByClaim(ctx, strings.TrimSpace(claimID))
	if err != nil {
		return nil, mapErr(err)
	}
	return items, nil
}

// SharedClaimIDs devuelve el set de claim ids compartidos con recipientID.
func (s *Service) SharedClaimIDs(ctx context.Context, recipientID string) (map[string]struct{}, error) {
	items, err := s.repo.ListByRecipient(ctx, strings.TrimSpace(recipientID))
	if err != nil {
		return nil, mapErr(err)
	}
	out := make(map[string]struct{}, len(items))
	for _, sh := range items {
		out[sh.ClaimID] = struct{}{}
	}
	return out, nil
}

// Subscription es el handle de una suscripción a shares nuevos. Lo libera Close o la
// cancelación del ctx pasado a Subscribe.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close es idempotente y se puede llamar desde el propio callback.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Done se cierra cuando el callback ya no va a ser invocado.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe invoca onNewShare por cada share nuevo dirigido a recipientID, en una
// goroutine propia y en orden de llegada. La entrega es best-effort: ListSharedWithMe
// sigue siendo la fuente de verdad.
func (s *Service) Subscribe(ctx context.Context, recipientID string, onNewShare func(Notification)) (*Subscription, error) {
	if s.notifier == nil {
		return nil, ErrNoNotifier
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "recipient id required")
	}
	if onNewShare == nil {
		return nil, apperr.New(apperr.CodeInvalidInput, "callback required")
	}

	ch, release := s.notifier.Subscribe(recipientID)
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer release()
		defer cancel()

		for {
			select {
			case <-subCtx.Done():
				return
			case n, ok := <-ch:
				if !ok {
					return
				}
				// Un Close desde el callback anterior corta acá.
				if subCtx.Err() != nil {
					return
				}
				onNewShare(n)
			}
		}
	}()

	return sub, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, recordstore.ErrNotFound):
		return ErrShareNotFound
	case errors.Is(err, recordstore.ErrUnavailable):
		return apperr.Wrap(apperr.CodeStoreUnavailable, ErrStoreUnavailable.Message, err)
	default:
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.Wrap(apperr.CodeInternal, "shares store error", err)
	}
}
