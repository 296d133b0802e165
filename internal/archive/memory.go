package archive

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a Store for a single process. Entries expire after ttl; a
// zero ttl keeps them forever.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	entry   Entry
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	me := memoryEntry{entry: e}
	if s.ttl > 0 {
		me.expires = s.now().Add(s.ttl)
	}
	s.entries[e.ID] = me
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*Entry, error) {
	s.mu.RLock()
	me, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !me.expires.IsZero() && !s.now().Before(me.expires) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	e := me.entry
	return &e, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
