package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogotex/guestbook/internal/guestbook"
	"github.com/gogotex/guestbook/internal/guestbook/repository"
	"github.com/gogotex/guestbook/internal/tasks"
	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/gogotex/guestbook/pkg/metrics"
)

const (
	// LatestLimit caps the entries rendered on the guestbook page.
	LatestLimit = 10
	// SeriesLimit caps the entries read by one data export poll.
	SeriesLimit = 100
	// PurgeBatch caps the keys deleted by one purge invocation.
	PurgeBatch = 1000
)

// ErrBadRequest marks errors caused by caller input rather than storage.
var ErrBadRequest = errors.New("bad request")

// Service implements the guestbook operations over a Repository. The queue
// receives purge continuations and may be nil, in which case PurgePage never
// schedules follow-ups.
type Service struct {
	repo  repository.Repository
	queue tasks.Queue

	purgeBatch int

	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewService(repo repository.Repository, q tasks.Queue) *Service {
	return &Service{repo: repo, queue: q, purgeBatch: PurgeBatch, now: time.Now}
}

// SetClock replaces the time source used to date new greetings.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetPurgeBatch overrides PurgeBatch. Non-positive values restore the default.
func (s *Service) SetPurgeBatch(n int) {
	if n <= 0 {
		n = PurgeBatch
	}
	s.purgeBatch = n
}

// Latest returns up to LatestLimit greetings of the named guestbook, newest first.
func (s *Service) Latest(ctx context.Context, name string) ([]*guestbook.Greeting, error) {
	list, err := s.repo.Latest(ctx, guestbook.Key(name), LatestLimit)
	if err != nil {
		return nil, fmt.Errorf("latest greetings: %w", err)
	}
	return list, nil
}

// Sign stores a new greeting with the given content in the named guestbook.
// Content is stored as is; the export reader is the one that interprets it.
func (s *Service) Sign(ctx context.Context, name, content string) (*guestbook.Greeting, error) {
	g := &guestbook.Greeting{
		Guestbook: guestbook.Key(name),
		Content:   content,
		Date:      s.timestamp(),
	}
	if err := s.repo.Put(ctx, g); err != nil {
		return nil, fmt.Errorf("sign guestbook %q: %w", g.Guestbook, err)
	}
	metrics.GreetingsSigned.Inc()
	logger.Debugf("greeting %s signed in %q", g.ID, g.Guestbook)
	return g, nil
}

// Ping checks the storage collaborator.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// timestamp returns the write time for a new greeting: UTC, millisecond
// precision (what BSON dates keep), and strictly after the previous one.
func (s *Service) timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC().Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}
