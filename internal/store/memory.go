package store

import (
	"context"
	"sync"

	"github.com/kwabenadarko/navicare/internal/providers"
)

// MemoryStore keeps records in process memory. It is the default when no
// redis address is configured.
type MemoryStore struct {
	mu            sync.RWMutex
	saved         map[string][]providers.Record
	subscriptions map[string]Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		saved:         make(map[string][]providers.Record),
		subscriptions: make(map[string]Subscription),
	}
}

func (s *MemoryStore) SavedProviders(_ context.Context, userID string) ([]providers.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.saved[userID]
	out := make([]providers.Record, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) ToggleSaved(_ context.Context, userID string, rec providers.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, saved := toggle(s.saved[userID], rec)
	s.saved[userID] = list
	return saved, nil
}

func (s *MemoryStore) Subscription(_ context.Context, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	out := sub
	return &out, nil
}

func (s *MemoryStore) SaveSubscription(_ context.Context, userID string, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[userID] = sub
	return nil
}

func (s *MemoryStore) Close() error { return nil }
