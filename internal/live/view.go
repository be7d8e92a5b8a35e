package live

import (
	"context"
	"errors"
	"sync"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// ErrViewClosed is returned by Switch after Close.
var ErrViewClosed = errors.New("live: view closed")

// View is a list view whose filter can change while it is open.
// It owns one subscription at a time and funnels its snapshots into a single
// channel.
//
// Snapshots are full result sets, so the channel holds only the newest
// undelivered one; a reader that falls behind skips intermediate states but
// never sees them out of order.
type View struct {
	feed *Feed
	ctx  context.Context
	stop context.CancelFunc
	out  chan domain.Snapshot
	wg   sync.WaitGroup

	mu     sync.Mutex
	gen    uint64
	sub    *Subscription
	closed bool
}

// NewView opens a view on q. It is closed by Close or when ctx is done.
func (f *Feed) NewView(ctx context.Context, q domain.TieQuery) *View {
	ctx, stop := context.WithCancel(ctx)
	v := &View{
		feed: f,
		ctx:  ctx,
		stop: stop,
		out:  make(chan domain.Snapshot, 1),
	}

	v.mu.Lock()
	v.gen = 1
	v.sub = f.Watch(ctx, q)
	v.start(v.gen, v.sub)
	v.mu.Unlock()
	return v
}

// Snapshots returns the channel of snapshots for the current query.
// It is closed by Close.
func (v *View) Snapshots() <-chan domain.Snapshot {
	return v.out
}

// Query returns the query currently in effect.
func (v *View) Query() domain.TieQuery {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sub.Query()
}

// Switch replaces the current query with q. The new subscription is swapped
// in first, then the old one is closed and waited for. Once Switch returns,
// no snapshot of the old query is delivered.
func (v *View) Switch(q domain.TieQuery) error {
	next := v.feed.Watch(v.ctx, q)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		next.Close()
		return ErrViewClosed
	}
	v.gen++
	old := v.sub
	v.sub = next
	v.start(v.gen, next)
	// A pending snapshot belongs to the old query.
	select {
	case <-v.out:
	default:
	}
	v.mu.Unlock()

	old.Close()
	return nil
}

// Close stops the current subscription and closes the snapshot channel.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.gen++
	sub := v.sub
	v.mu.Unlock()

	sub.Close()
	v.stop()
	v.wg.Wait()
	close(v.out)
}

// start forwards the snapshots of sub, tagged with gen. Callers hold v.mu.
func (v *View) start(gen uint64, sub *Subscription) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		for snap := range sub.C {
			v.deliver(gen, snap)
		}
	}()
}

// deliver publishes snap if gen is still current, replacing any snapshot
// the reader has not taken yet.
func (v *View) deliver(gen uint64, snap domain.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return
	}
	select {
	case <-v.out:
	default:
	}
	v.out <- snap
}
