package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryChannel is the NOTIFY channel the ties and categories triggers publish on.
const InventoryChannel = "inventory_changes"

// Change is the payload of one inventory notification.
type Change struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	ID    uuid.UUID `json:"id"`
}

// Notifier turns Postgres NOTIFY messages into callbacks.
type Notifier struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	// minBackoff and maxBackoff bound the reconnect delay.
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewNotifier returns a Notifier that listens through pool.
func NewNotifier(pool *pgxpool.Pool, logger *slog.Logger) *Notifier {
	return &Notifier{
		pool:       pool,
		logger:     logger,
		minBackoff: 250 * time.Millisecond,
		maxBackoff: 10 * time.Second,
	}
}

// Listen holds one pooled connection in LISTEN on channel and calls fn for
// every notification until ctx is cancelled. A dropped connection is
// re-established with exponential backoff; fn is also called once after each
// reconnect because notifications sent while disconnected are lost.
// Listen returns ctx.Err() when it stops.
func (n *Notifier) Listen(ctx context.Context, channel string, fn func(Change)) error {
	backoff := n.minBackoff
	for attempt := 0; ; attempt++ {
		err := n.listenOnce(ctx, channel, fn, attempt > 0)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.logger.Warn("notification listener disconnected",
			"channel", channel,
			"error", err,
			"retry_in", backoff.String(),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, n.maxBackoff)
	}
}

func (n *Notifier) listenOnce(ctx context.Context, channel string, fn func(Change), reconnected bool) error {
	pooled, err := n.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("repo.Notifier.Listen: acquire: %w", err)
	}
	// A connection in LISTEN must not go back to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("repo.Notifier.Listen: listen: %w", err)
	}
	n.logger.Info("listening for notifications", "channel", channel)
	if reconnected {
		fn(Change{Op: "RESYNC"})
	}

	for {
		note, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("repo.Notifier.Listen: wait: %w", err)
		}
		var c Change
		if err := json.Unmarshal([]byte(note.Payload), &c); err != nil {
			n.logger.Warn("malformed notification payload", "channel", channel, "payload", note.Payload)
			c = Change{Op: "UNKNOWN"}
		}
		fn(c)
	}
}
