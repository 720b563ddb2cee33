package history

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory, thread-safe Store implementation for
// tests and single-process experiments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	entriesAppended.Inc()
	return nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lastReversed(s.entries, n), nil
}
