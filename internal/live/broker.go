// Package live turns inventory change notifications into continuously
// refreshed, filtered tie lists.
package live

import "sync"

// Broker fans change signals out to subscribers. Each subscriber has a
// one-slot signal channel, so any burst of changes leaves at most one
// pending refresh.
type Broker struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]chan struct{}
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]chan struct{})}
}

// Subscribe registers a subscriber. The returned cancel func must be called
// once the subscriber stops reading.
func (b *Broker) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Notify signals every subscriber. It never blocks.
func (b *Broker) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
