package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/gogotex/guestbook/pkg/metrics"
)

// Handler processes one task. A returned error causes a retry.
type Handler func(ctx context.Context, t *Task) error

// Schedule enqueues t and records it in the enqueue counter.
func Schedule(ctx context.Context, q Queue, t Task) error {
	if err := q.Enqueue(ctx, t); err != nil {
		return err
	}
	metrics.TasksEnqueued.WithLabelValues(t.Kind).Inc()
	return nil
}

// WorkerOptions tunes a Worker. Zero values take the defaults.
type WorkerOptions struct {
	// MaxAttempts caps deliveries of a failing task. Default is 5.
	MaxAttempts int
	// Poll is how long a single Dequeue waits. Default is 1s.
	Poll time.Duration
}

// Worker pulls tasks from a Queue and dispatches them by kind.
type Worker struct {
	queue    Queue
	opts     WorkerOptions
	handlers map[string]Handler
}

func NewWorker(q Queue, opts WorkerOptions) *Worker {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Poll <= 0 {
		opts.Poll = time.Second
	}
	return &Worker{queue: q, opts: opts, handlers: map[string]Handler{}}
}

// Handle registers h for tasks of the given kind. Registering a kind twice panics.
func (w *Worker) Handle(kind string, h Handler) {
	if _, dup := w.handlers[kind]; dup {
		panic(fmt.Sprintf("tasks: handler for %q already registered", kind))
	}
	w.handlers[kind] = h
}

// Run processes tasks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	logger.Infof("task worker started (max_attempts=%d poll=%s)", w.opts.MaxAttempts, w.opts.Poll)
	for {
		t, err := w.queue.Dequeue(ctx, w.opts.Poll)
		switch {
		case err == nil:
			w.process(ctx, t)
		case ctx.Err() != nil:
			logger.Infof("task worker stopped")
			return nil
		case errors.Is(err, ErrEmpty):
		default:
			logger.Warnf("task dequeue failed: %v", err)
			select {
			case <-time.After(w.opts.Poll):
			case <-ctx.Done():
			}
		}
	}
}

// Drain processes tasks until the queue stays empty for wait, and returns the
// number of tasks processed. Follow-up tasks enqueued by handlers are drained too.
func (w *Worker) Drain(ctx context.Context, wait time.Duration) (int, error) {
	n := 0
	for {
		t, err := w.queue.Dequeue(ctx, wait)
		if errors.Is(err, ErrEmpty) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		w.process(ctx, t)
		n++
	}
}

func (w *Worker) process(ctx context.Context, t *Task) {
	h, ok := w.handlers[t.Kind]
	if !ok {
		logger.Warnf("dropping task %s: no handler for kind %q", t.ID, t.Kind)
		metrics.TasksProcessed.WithLabelValues(t.Kind, "unknown").Inc()
		return
	}
	err := h(ctx, t)
	if err == nil {
		metrics.TasksProcessed.WithLabelValues(t.Kind, "ok").Inc()
		return
	}
	t.Attempt++
	if t.Attempt >= w.opts.MaxAttempts {
		logger.Errorf("task %s (%s) failed after %d attempts: %v", t.ID, t.Kind, t.Attempt, err)
		metrics.TasksProcessed.WithLabelValues(t.Kind, "dropped").Inc()
		return
	}
	logger.Warnf("task %s (%s) attempt %d failed, retrying: %v", t.ID, t.Kind, t.Attempt, err)
	metrics.TasksProcessed.WithLabelValues(t.Kind, "retry").Inc()
	if qerr := Schedule(ctx, w.queue, *t); qerr != nil {
		logger.Errorf("task %s (%s) lost, requeue failed: %v", t.ID, t.Kind, qerr)
	}
}
