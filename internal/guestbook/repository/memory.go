package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gogotex/guestbook/internal/guestbook"
)

// MemoryRepo is an in-memory Repository used by unit tests and by the server
// when no MongoDB URI is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	seq   uint64
	store map[string]*guestbook.Greeting
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*guestbook.Greeting)}
}

func (m *MemoryRepo) Put(ctx context.Context, g *guestbook.Greeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	// zero padded so lexical order matches insertion order
	g.ID = fmt.Sprintf("g%016d", m.seq)
	cp := *g
	m.store[g.ID] = &cp
	return nil
}

func (m *MemoryRepo) Latest(ctx context.Context, book string, limit int) ([]*guestbook.Greeting, error) {
	out := m.scoped(book, func(*guestbook.Greeting) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return truncate(out, limit), nil
}

func (m *MemoryRepo) Since(ctx context.Context, book string, since time.Time, limit int) ([]*guestbook.Greeting, error) {
	out := m.scoped(book, func(g *guestbook.Greeting) bool { return g.Date.After(since) })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return truncate(out, limit), nil
}

func (m *MemoryRepo) KeysPage(ctx context.Context, after Cursor, limit int) (Page, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.store))
	for id := range m.store {
		if id > after.after {
			keys = append(keys, id)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	p := Page{Next: after}
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
		p.More = true
	}
	p.Keys = keys
	if len(keys) > 0 {
		p.Next = CursorAfter(keys[len(keys)-1])
	}
	return p, nil
}

func (m *MemoryRepo) DeleteMulti(ctx context.Context, keys []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := m.store[k]; ok {
			delete(m.store, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) Ping(ctx context.Context) error { return nil }

// Len returns the number of stored greetings across all guestbooks.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

func (m *MemoryRepo) scoped(book string, keep func(*guestbook.Greeting) bool) []*guestbook.Greeting {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*guestbook.Greeting, 0)
	for _, g := range m.store {
		if g.Guestbook == book && keep(g) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out
}

func truncate(list []*guestbook.Greeting, limit int) []*guestbook.Greeting {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
