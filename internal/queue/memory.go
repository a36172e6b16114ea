package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueClosed is returned by a transport whose Close has run.
var ErrQueueClosed = errors.New("queue transport is closed")

// MemoryQueue is a channel-backed in-process transport used by tests
// and single-binary local runs. Delivery semantics match the Redis
// transport: one consumer per message, no redelivery, and operations
// after Close fail.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	size   int
	closed bool
}

// NewMemoryQueue creates a transport whose per-queue buffers hold size
// messages (minimum 1).
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 256
	}
	return &MemoryQueue{queues: make(map[string]chan []byte), size: size}
}

func (q *MemoryQueue) channel(name string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	ch, ok := q.queues[name]
	if !ok {
		ch = make(chan []byte, q.size)
		q.queues[name] = ch
	}
	return ch, nil
}

func (q *MemoryQueue) Push(ctx context.Context, queue string, payload []byte) error {
	ch, err := q.channel(queue)
	if err != nil {
		return err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	select {
	case ch <- cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) BlockingPop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error) {
	ch, err := q.channel(queue)
	if err != nil {
		return nil, false, err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case payload := <-ch:
		return payload, true, nil
	case <-timer.C:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Len reports the number of buffered messages; test helper.
func (q *MemoryQueue) Len(queue string) int {
	ch, err := q.channel(queue)
	if err != nil {
		return 0
	}
	return len(ch)
}

func (q *MemoryQueue) Ping(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	return nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
