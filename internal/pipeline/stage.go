// Package pipeline runs the three durable-queue stages: OCR,
// text-analysis, and storage. A stage is a single logical consumer:
// one job is fully processed before the next pop. Failures never
// retry an individual job; the only retry is the poll itself after a
// transport error.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
)

// Handler performs one stage's unit of work on a raw queue payload.
// Returning an error drops the job (logged, terminal); it is never
// republished.
type Handler interface {
	Name() string
	Queue() string
	Handle(ctx context.Context, payload []byte) error
}

// Stage drives a Handler against its input queue.
type Stage struct {
	handler    Handler
	transport  queue.Queue
	popTimeout time.Duration
	backoff    time.Duration
	logger     *slog.Logger
}

// NewStage wires a handler to a transport. popTimeout defaults to 30s,
// backoff to 5s.
func NewStage(handler Handler, transport queue.Queue, popTimeout, backoff time.Duration, logger *slog.Logger) *Stage {
	if popTimeout <= 0 {
		popTimeout = 30 * time.Second
	}
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{
		handler:    handler,
		transport:  transport,
		popTimeout: popTimeout,
		backoff:    backoff,
		logger:     logger.With("stage", handler.Name(), "queue", handler.Queue()),
	}
}

// Run loops until ctx is cancelled: blocking-pop with timeout (a
// timeout is idle, not an error), handle one job, repeat. A transport
// error sleeps the backoff interval and retries the poll.
func (s *Stage) Run(ctx context.Context) {
	s.logger.Info("stage started")
	for {
		if ctx.Err() != nil {
			s.logger.Info("stage stopped")
			return
		}

		payload, ok, err := s.transport.BlockingPop(ctx, s.handler.Queue(), s.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("stage stopped")
				return
			}
			s.logger.Error("queue pop failed, backing off", "error", err)
			s.sleep(ctx)
			continue
		}
		if !ok {
			continue // idle
		}

		start := time.Now()
		if err := s.handler.Handle(ctx, payload); err != nil {
			// terminal for this job: no retry, no dead-letter
			s.logger.Error("job failed and was dropped",
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			continue
		}
		s.logger.Info("job processed",
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Stage) sleep(ctx context.Context) {
	t := time.NewTimer(s.backoff)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
