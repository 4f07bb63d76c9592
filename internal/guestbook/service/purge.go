package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/guestbook/internal/guestbook/repository"
	"github.com/gogotex/guestbook/internal/tasks"
	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/gogotex/guestbook/pkg/metrics"
)

const (
	// TaskPurge is the task kind that carries a purge continuation.
	TaskPurge = "purge"
	// ParamBookmark is the task and request parameter holding the cursor.
	ParamBookmark = "bookmark"
)

// PurgeResult describes one purge page.
type PurgeResult struct {
	Deleted int
	// Next is the encoded continuation, set only when More is true.
	Next string
	More bool
	// Scheduled reports whether a continuation task was enqueued.
	Scheduled bool
}

// PurgePage deletes one page of greetings across all guestbooks, starting after
// bookmark, and schedules a purge task for the next page when more remain.
// A failed enqueue is logged only: the chain stops and the page still counts.
func (s *Service) PurgePage(ctx context.Context, bookmark string) (PurgeResult, error) {
	res, err := s.purgePage(ctx, bookmark)
	if err != nil || !res.More {
		return res, err
	}
	if s.queue == nil {
		logger.Warnf("purge: no task queue configured, stopping after %d deletions", res.Deleted)
		return res, nil
	}
	t := tasks.New(TaskPurge, map[string]string{ParamBookmark: res.Next})
	if err := tasks.Schedule(ctx, s.queue, t); err != nil {
		logger.Warnf("purge: continuation not scheduled, deletion stops here: %v", err)
		return res, nil
	}
	res.Scheduled = true
	return res, nil
}

// PurgeAll runs purge pages back to back until nothing remains and returns the
// total number of deleted greetings. It does not touch the task queue.
func (s *Service) PurgeAll(ctx context.Context) (int, error) {
	total := 0
	bookmark := ""
	for {
		res, err := s.purgePage(ctx, bookmark)
		total += res.Deleted
		if err != nil {
			return total, err
		}
		if !res.More {
			return total, nil
		}
		bookmark = res.Next
	}
}

// HandlePurgeTask is the tasks.Handler for TaskPurge. A bookmark that does not
// decode can never succeed, so it is dropped instead of retried.
func (s *Service) HandlePurgeTask(ctx context.Context, t *tasks.Task) error {
	res, err := s.PurgePage(ctx, t.Param(ParamBookmark))
	if errors.Is(err, ErrBadRequest) {
		logger.Errorf("purge task %s dropped: %v", t.ID, err)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Infof("purge task %s deleted %d greetings (more=%v)", t.ID, res.Deleted, res.More)
	return nil
}

// RegisterTasks attaches the service's task handlers to w.
func (s *Service) RegisterTasks(w *tasks.Worker) {
	w.Handle(TaskPurge, s.HandlePurgeTask)
}

func (s *Service) purgePage(ctx context.Context, bookmark string) (PurgeResult, error) {
	cur, err := repository.DecodeCursor(bookmark)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("%w: bookmark: %v", ErrBadRequest, err)
	}
	page, err := s.repo.KeysPage(ctx, cur, s.purgeBatch)
	if errors.Is(err, repository.ErrBadCursor) {
		return PurgeResult{}, fmt.Errorf("%w: bookmark: %v", ErrBadRequest, err)
	}
	if err != nil {
		return PurgeResult{}, fmt.Errorf("purge scan: %w", err)
	}
	n, err := s.repo.DeleteMulti(ctx, page.Keys)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("purge delete: %w", err)
	}
	metrics.PurgeDeleted.Add(float64(n))
	res := PurgeResult{Deleted: n, More: page.More}
	if page.More {
		res.Next = page.Next.Encode()
	}
	return res, nil
}
