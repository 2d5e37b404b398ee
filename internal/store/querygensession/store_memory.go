package querygensession

import (
	"context"
	"sync"
	"time"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[pid.QueryGenSessionID]*fd.QueryGenerationSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[pid.QueryGenSessionID]*fd.QueryGenerationSession)}
}

func (s *MemoryStore) Save(ctx context.Context, row fd.QueryGenerationSession) (fd.QueryGenerationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.ID == (pid.QueryGenSessionID{}) {
		row.ID = pid.NewQueryGenSessionID()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	stored := row
	s.rows[row.ID] = &stored
	return stored, nil
}

func (s *MemoryStore) Get(ctx context.Context, id pid.QueryGenSessionID) (fd.QueryGenerationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return fd.QueryGenerationSession{}, ErrNotFound
	}
	return *row, nil
}

func (s *MemoryStore) ListForSession(ctx context.Context, sessionID pid.SessionID) ([]fd.QueryGenerationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []fd.QueryGenerationSession
	for _, row := range s.rows {
		if row.SessionID == sessionID {
			out = append(out, *row)
		}
	}
	return out, nil
}
