package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// Source runs the server-side part of a tie query. repo.TieRepo satisfies it.
type Source interface {
	List(ctx context.Context, q domain.TieQuery) ([]domain.Tie, error)
}

// Feed creates live queries over a Source, refreshed by a Broker.
type Feed struct {
	broker *Broker
	src    Source
	logger *slog.Logger
}

// NewFeed returns a Feed.
func NewFeed(broker *Broker, src Source, logger *slog.Logger) *Feed {
	return &Feed{broker: broker, src: src, logger: logger}
}

// Subscription is one running live query.
// Snapshots arrive on C in the order they were produced; C is closed when
// the query stops.
type Subscription struct {
	C <-chan domain.Snapshot

	query     domain.TieQuery
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Query returns the query this subscription runs.
func (s *Subscription) Query() domain.TieQuery {
	return s.query
}

// Close stops the query and returns once its goroutine has exited.
// No snapshot is sent on C after Close returns. Close is idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(s.cancel)
	<-s.done
}

// Watch starts a live query. It first sends a loading snapshot, then the
// result of q, then a fresh result after every change signal. A failed query
// yields one error snapshot and is not retried until the next change.
// The subscription ends when ctx is done or Close is called.
func (f *Feed) Watch(ctx context.Context, q domain.TieQuery) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	// Subscribe before the first query so a change made while it runs is not missed.
	signal, unsubscribe := f.broker.Subscribe()

	ch := make(chan domain.Snapshot)
	s := &Subscription{C: ch, query: q, cancel: cancel, done: make(chan struct{})}

	send := func(snap domain.Snapshot) bool {
		select {
		case ch <- snap:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(s.done)
		defer close(ch)
		defer unsubscribe()

		if !send(loadingSnapshot(q)) {
			return
		}
		for {
			ties, err := f.src.List(ctx, q)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				f.logger.WarnContext(ctx, "live query failed",
					"search", q.Search,
					"category", q.Category,
					"error", err,
				)
			}
			if !send(BuildSnapshot(q, ties, err)) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return s
}
