package tokenstore

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]time.Time{}, now: time.Now}
}

func (s *MemoryStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	_ = ctx
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.items[keyPrefix+tokenID] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_ = ctx
	key := keyPrefix + tokenID
	s.mu.RLock()
	expires, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.now().After(expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
