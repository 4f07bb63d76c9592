package tasks

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned by MemoryQueue when its buffer is exhausted.
var ErrQueueFull = errors.New("task queue full")

// MemoryQueue is a bounded in-process Queue.
type MemoryQueue struct {
	ch chan Task
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{ch: make(chan Task, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, t Task) error {
	select {
	case q.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*Task, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case t := <-q.ch:
		return &t, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}
