package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps records in process and evicts those idle longer than
// the TTL. A non-positive TTL disables eviction.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	rec      *Record
	accessed time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	c := rec.Clone()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	s.records[c.ID] = &entry{rec: c, accessed: now}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.accessed = s.now()
	return e.rec.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Record) error) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	work := e.rec.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	now := s.now()
	work.ID = id
	work.UpdatedAt = now
	e.rec = work
	e.accessed = now
	return work.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.liveLocked(id); !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// List returns live records, most recently updated first.
func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	out := make([]Summary, 0, len(s.records))
	for _, e := range s.records {
		out = append(out, e.rec.Summary())
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Cleanup evicts idle records and returns how many were dropped.
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

// Len returns the number of records held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) liveLocked(id string) (*entry, bool) {
	e, ok := s.records[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.records, id)
		return nil, false
	}
	return e, true
}

func (s *MemoryStore) evictLocked() int {
	removed := 0
	for id, e := range s.records {
		if s.expired(e) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.accessed) > s.ttl
}
