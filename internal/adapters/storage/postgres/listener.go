package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"claims-review/internal/domain/shares"
	"claims-review/internal/platform/logger"
)

const (
	shareChannel         = "share_created"
	defaultListenBackoff = 2 * time.Second
)

// SharePublisher recibe las notificaciones. *pubsub.Hub[shares.Notification] lo implementa.
type SharePublisher interface {
	Publish(key string, v shares.Notification) int
}

// ShareListener hace LISTEN sobre share_created en una conexión dedicada y reenvía cada
// payload al publisher, por recipient.
type ShareListener struct {
	dsn     string
	pub     SharePublisher
	log     logger.Logger
	backoff time.Duration
}

func NewShareListener(dsn string, pub SharePublisher, log logger.Logger) *ShareListener {
	return &ShareListener{
		dsn:     dsn,
		pub:     pub,
		log:     logger.OrDiscard(log),
		backoff: defaultListenBackoff,
	}
}

// Run bloquea hasta que ctx se cancela. Si la conexión se cae, reconecta con un
// back-off fijo; lo notificado mientras tanto se pierde.
func (l *ShareListener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn("share listener disconnected", map[string]any{
			"error":   errString(err),
			"backoff": l.backoff.String(),
		})

		t := time.NewTimer(l.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (l *ShareListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+shareChannel); err != nil {
		return err
	}
	l.log.Info("listening for share notifications", map[string]any{"channel": shareChannel})

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch(n.Payload)
	}
}

func (l *ShareListener) dispatch(payload string) {
	var msg shares.Notification
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		l.log.Warn("bad share notification payload", map[string]any{"error": err.Error()})
		return
	}
	if msg.RecipientID == "" {
		return
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	l.pub.Publish(msg.RecipientID, msg)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
