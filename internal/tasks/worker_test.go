package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogotex/guestbook/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWorker_DrainFollowsChain(t *testing.T) {
	q := NewMemoryQueue(16)
	w := NewWorker(q, WorkerOptions{})
	ctx := context.Background()

	var seen []string
	w.Handle("countdown", func(ctx context.Context, tk *Task) error {
		seen = append(seen, tk.Param("n"))
		next := map[string]string{"3": "2", "2": "1", "1": ""}[tk.Param("n")]
		if next == "" {
			return nil
		}
		return Schedule(ctx, q, New("countdown", map[string]string{"n": next}))
	})

	require.NoError(t, Schedule(ctx, q, New("countdown", map[string]string{"n": "3"})))
	n, err := w.Drain(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []string{"3", "2", "1"}, seen)
}

func TestWorker_RetriesThenDrops(t *testing.T) {
	q := NewMemoryQueue(16)
	w := NewWorker(q, WorkerOptions{MaxAttempts: 3})
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.TasksProcessed.WithLabelValues("flaky", "dropped"))
	calls := 0
	w.Handle("flaky", func(ctx context.Context, tk *Task) error {
		calls++
		return errors.New("boom")
	})
	require.NoError(t, q.Enqueue(ctx, New("flaky", nil)))

	n, err := w.Drain(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, calls)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.TasksProcessed.WithLabelValues("flaky", "dropped")))
}

func TestWorker_RetrySucceeds(t *testing.T) {
	q := NewMemoryQueue(16)
	w := NewWorker(q, WorkerOptions{})
	ctx := context.Background()

	var attempts []int
	w.Handle("once", func(ctx context.Context, tk *Task) error {
		attempts = append(attempts, tk.Attempt)
		if tk.Attempt == 0 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, q.Enqueue(ctx, New("once", nil)))
	_, err := w.Drain(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, attempts)
}

func TestWorker_UnknownKindDropped(t *testing.T) {
	q := NewMemoryQueue(4)
	w := NewWorker(q, WorkerOptions{})
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, New("nobody", nil)))
	n, err := w.Drain(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	l, _ := q.Len(ctx)
	require.EqualValues(t, 0, l)
}

func TestWorker_DuplicateHandlerPanics(t *testing.T) {
	w := NewWorker(NewMemoryQueue(1), WorkerOptions{})
	w.Handle("x", func(context.Context, *Task) error { return nil })
	require.Panics(t, func() { w.Handle("x", func(context.Context, *Task) error { return nil }) })
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewMemoryQueue(4)
	w := NewWorker(q, WorkerOptions{Poll: 5 * time.Millisecond})
	done := make(chan string, 1)
	w.Handle("ping", func(ctx context.Context, tk *Task) error {
		done <- tk.ID
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	tk := New("ping", nil)
	require.NoError(t, q.Enqueue(ctx, tk))
	select {
	case id := <-done:
		require.Equal(t, tk.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
