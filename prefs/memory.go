package prefs

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe in-memory Store for tests and single-node
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs *Preferences
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store with no preferences set.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prefs == nil {
		return Defaults(), nil
	}
	return *s.prefs, nil
}

func (s *MemoryStore) Set(_ context.Context, p Preferences) error {
	s.mu.Lock()
	s.prefs = &p
	s.mu.Unlock()
	return nil
}
