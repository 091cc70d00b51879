package prefs

import (
	"context"
	"sync"
)

// MemoryStore mirrors PGStore for tests and DB-less deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]bool)}
}

func (s *MemoryStore) TransparentBackground(_ context.Context, owner string) (bool, error) {
	if owner == "" {
		owner = DefaultOwner
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[owner], nil
}

func (s *MemoryStore) SetTransparentBackground(_ context.Context, owner string, value bool) error {
	if owner == "" {
		owner = DefaultOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[owner] = value
	return nil
}

var _ Store = (*MemoryStore)(nil)
