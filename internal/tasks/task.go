// Package tasks is the work queue the guestbook schedules follow-up work on.
//
// A Task names a handler kind and carries string parameters, such as the
// continuation bookmark of a purge. Queues deliver at least once; handlers
// must tolerate seeing the same task twice.
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmpty is returned by Dequeue when nothing arrived within the wait.
var ErrEmpty = errors.New("task queue empty")

// Task is one unit of scheduled work.
type Task struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Params     map[string]string `json:"params,omitempty"`
	Attempt    int               `json:"attempt"`
	EnqueuedAt time.Time         `json:"enqueuedAt"`
}

// New returns a task of the given kind with a fresh ID.
func New(kind string, params map[string]string) Task {
	return Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Params:     params,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Param returns the named parameter or "" when unset.
func (t *Task) Param(name string) string {
	if t.Params == nil {
		return ""
	}
	return t.Params[name]
}

// Queue is the scheduler collaborator.
type Queue interface {
	Enqueue(ctx context.Context, t Task) error
	// Dequeue blocks up to wait for a task and returns ErrEmpty on timeout.
	Dequeue(ctx context.Context, wait time.Duration) (*Task, error)
	Len(ctx context.Context) (int64, error)
}
