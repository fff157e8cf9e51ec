// Package bus provides the two message-passing primitives all ledd
// components share state through: a one-to-many broadcast bus and a
// bounded many-to-one command queue.
//
// # Broadcast bus
//
// Bus is a latest-value broadcast channel. Publish never blocks and
// never fails; each subscriber has an independent cursor. A slow
// subscriber observes the most recent value when it next receives,
// skipping values that were superseded in between. A subscriber never
// observes a value published before it subscribed.
//
// # Command queue
//
// Queue is a bounded FIFO with multiple producers and a single
// consumer. Enqueue fails with ErrQueueFull when capacity is
// exhausted; callers must treat this as a signal to reject the
// request, not retry indefinitely. Submission order is preserved
// among successfully enqueued items.
//
// These primitives are the deliberate substitute for shared-memory
// locking: every cross-component interaction in ledd goes through one
// of them.
package bus
