package bus

import (
	"context"
	"errors"
)

// ErrQueueFull indicates the queue is at capacity and the item was
// rejected. Callers should surface this as a rejection to the
// originator rather than buffer or retry.
var ErrQueueFull = errors.New("queue full")

// Queue is a bounded FIFO for multiple producers and a single
// consumer. Ownership of an item transfers to the consumer on
// dequeue; items are never duplicated.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue with the given capacity.
// Capacity must be at least 1.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		ch: make(chan T, capacity),
	}
}

// Enqueue adds an item to the queue. It never blocks: if the queue is
// at capacity it returns ErrQueueFull and the item is dropped.
func (q *Queue[T]) Enqueue(v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until an item is available or the context is done.
// Intended for the sole consumer.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// C exposes the receive side for use in a select loop.
// Only the sole consumer may receive from it.
func (q *Queue[T]) C() <-chan T {
	return q.ch
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
