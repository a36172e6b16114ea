package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
)

// countingHandler records handled payloads and optionally fails some.
type countingHandler struct {
	mu      sync.Mutex
	handled [][]byte
	failOn  string
	done    chan struct{} // closed-ish signal: receives after each handle
}

func newCountingHandler(failOn string) *countingHandler {
	return &countingHandler{failOn: failOn, done: make(chan struct{}, 16)}
}

func (h *countingHandler) Name() string  { return "counting" }
func (h *countingHandler) Queue() string { return "test_queue" }

func (h *countingHandler) Handle(_ context.Context, payload []byte) error {
	h.mu.Lock()
	h.handled = append(h.handled, payload)
	h.mu.Unlock()
	h.done <- struct{}{}
	if h.failOn != "" && string(payload) == h.failOn {
		return errors.New("handler rejected payload")
	}
	return nil
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func waitFor(t *testing.T, ch chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}
}

func TestStageProcessesJobsInOrder(t *testing.T) {
	transport := queue.NewMemoryQueue(8)
	handler := newCountingHandler("")
	stage := NewStage(handler, transport, 50*time.Millisecond, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stage.Run(ctx)

	for _, msg := range []string{"a", "b", "c"} {
		if err := transport.Push(ctx, "test_queue", []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, handler.done, 3)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	for i, want := range []string{"a", "b", "c"} {
		if string(handler.handled[i]) != want {
			t.Errorf("position %d: got %q, want %q", i, handler.handled[i], want)
		}
	}
}

func TestStageDropsFailedJobAndContinues(t *testing.T) {
	transport := queue.NewMemoryQueue(8)
	handler := newCountingHandler("poison")
	stage := NewStage(handler, transport, 50*time.Millisecond, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stage.Run(ctx)

	for _, msg := range []string{"ok1", "poison", "ok2"} {
		if err := transport.Push(ctx, "test_queue", []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, handler.done, 3)

	if got := handler.count(); got != 3 {
		t.Errorf("handled %d jobs, want 3 (failure must not stall the loop)", got)
	}
	// the poison message is gone for good
	if n := transport.Len("test_queue"); n != 0 {
		t.Errorf("%d messages still queued, want 0", n)
	}
}

func TestStageStopsOnCancel(t *testing.T) {
	transport := queue.NewMemoryQueue(1)
	handler := newCountingHandler("")
	stage := NewStage(handler, transport, 20*time.Millisecond, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		stage.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stage did not stop after cancel")
	}
}

func TestStageIdlesOnEmptyQueue(t *testing.T) {
	transport := queue.NewMemoryQueue(1)
	handler := newCountingHandler("")
	stage := NewStage(handler, transport, 10*time.Millisecond, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stage.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	if got := handler.count(); got != 0 {
		t.Errorf("idle stage handled %d jobs", got)
	}

	if err := transport.Push(ctx, "test_queue", []byte("late")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, handler.done, 1)
}
