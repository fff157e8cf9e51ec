package bus

import (
	"context"
	"sync"
)

// Bus is a one-to-many latest-value broadcast channel.
//
// Publish overwrites the held value; it never blocks on slow
// subscribers. Each Subscription tracks the sequence number of the
// last value it observed, so a subscriber that falls behind skips
// straight to the current value without replaying intermediates.
type Bus[T any] struct {
	mu   sync.Mutex
	seq  uint64
	last T
	subs map[*Subscription[T]]struct{}
}

// New creates a new broadcast bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// Publish broadcasts a value to all current subscribers.
// It never blocks and never fails; a subscriber that has not drained
// the previous value simply observes this one instead.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	b.seq++
	b.last = v
	for sub := range b.subs {
		select {
		case sub.notify <- struct{}{}:
		default:
			// Wakeup already pending.
		}
	}
	b.mu.Unlock()
}

// Latest returns the most recently published value, if any.
// This is a snapshot read; it does not consume anything and does not
// affect any subscriber's cursor.
func (b *Bus[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.seq > 0
}

// Subscribe registers a new subscriber. The subscription's cursor
// starts at the current sequence number: the first Receive returns
// only a value published after this call.
func (b *Bus[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		bus:    b,
		notify: make(chan struct{}, 1),
	}

	b.mu.Lock()
	sub.seen = b.seq
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// Subscription is a subscriber's handle on a Bus. It is not safe for
// concurrent use by multiple goroutines.
type Subscription[T any] struct {
	bus       *Bus[T]
	seen      uint64
	notify    chan struct{}
	cancelled bool
}

// Receive blocks until a value newer than the subscription's cursor is
// available, then returns it and advances the cursor. Values published
// and superseded while the subscriber was away are skipped.
func (s *Subscription[T]) Receive(ctx context.Context) (T, error) {
	for {
		if v, ok := s.take(); ok {
			return v, nil
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-s.notify:
		}
	}
}

// TryReceive returns the current value if it is newer than the
// subscription's cursor, without blocking.
func (s *Subscription[T]) TryReceive() (T, bool) {
	return s.take()
}

// Cancel removes the subscription from the bus. Receive calls after
// Cancel block until their context is done.
func (s *Subscription[T]) Cancel() {
	s.bus.mu.Lock()
	s.cancelled = true
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
}

// take claims the current value if the cursor is behind.
func (s *Subscription[T]) take() (T, bool) {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.cancelled {
		var zero T
		return zero, false
	}
	if s.bus.seq > s.seen {
		s.seen = s.bus.seq
		return s.bus.last, true
	}
	var zero T
	return zero, false
}
