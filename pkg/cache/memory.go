package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu          sync.RWMutex
	generations map[string]int64
	entries     map[string]memoryEntry
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		generations: make(map[string]int64),
		entries:     make(map[string]memoryEntry),
		now:         time.Now,
	}
}

func (s *MemoryStore) Generation(_ context.Context, tag string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.generations[tag]
	if !ok {
		s.generations[tag] = 0
	}
	return gen, nil
}

func (s *MemoryStore) Bump(_ context.Context, tag string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[tag]++
	return s.generations[tag], nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}
