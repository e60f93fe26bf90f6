package archive

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process archive for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]TurnRecord
	verdicts map[string][]VerdictRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		turns:    make(map[string][]TurnRecord),
		verdicts: make(map[string][]VerdictRecord),
	}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, record TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.turns[record.SessionID] = append(s.turns[record.SessionID], record)
	return nil
}

func (s *InMemoryStore) SaveVerdict(_ context.Context, record VerdictRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.verdicts[record.SessionID] = append(s.verdicts[record.SessionID], record)
	return nil
}

func (s *InMemoryStore) SessionTurns(_ context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.turns[sessionID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]TurnRecord, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
