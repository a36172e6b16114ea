// Package queue holds the durable-queue contract the pipeline stages
// run against, the wire-level job messages, and the transports: Redis
// lists in production, an in-process channel queue in tests.
package queue

import (
	"context"
	"time"
)

// Queue is a named set of list-based durable queues. Producers push to
// the head; consumers blocking-pop from the tail. A popped message is
// delivered to exactly one consumer; there is no redelivery after a
// consumer crash.
type Queue interface {
	// Push enqueues payload at the head of the named queue.
	Push(ctx context.Context, queue string, payload []byte) error

	// BlockingPop waits up to timeout for a message from the tail of
	// the named queue. ok is false on timeout, which is not an error.
	BlockingPop(ctx context.Context, queue string, timeout time.Duration) (payload []byte, ok bool, err error)

	// Ping verifies the transport is reachable.
	Ping(ctx context.Context) error

	Close() error
}
