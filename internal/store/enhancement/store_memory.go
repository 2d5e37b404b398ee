package enhancement

import (
	"context"
	"sync"
	"time"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

// clockSkewTolerance is how far into the past a record's CreatedAt may sit
// relative to the candidate's current log head before it is rejected as
// backdated.
const clockSkewTolerance = 2 * time.Second

type MemoryStore struct {
	mu   sync.Mutex
	rows map[pid.CandidateID][]fd.EnhancementRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[pid.CandidateID][]fd.EnhancementRecord)}
}

func (s *MemoryStore) Append(ctx context.Context, r fd.EnhancementRecord) (fd.EnhancementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if r.ID == (pid.EnhancementID{}) {
		r.ID = pid.NewEnhancementID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}

	existing := s.rows[r.CandidateID]
	if len(existing) > 0 {
		head := existing[len(existing)-1].CreatedAt
		if r.CreatedAt.Before(head.Add(-clockSkewTolerance)) {
			return fd.EnhancementRecord{}, ErrBackdated
		}
	}

	s.rows[r.CandidateID] = append(existing, r)
	return r, nil
}

func (s *MemoryStore) ListForCandidate(ctx context.Context, candidateID pid.CandidateID) ([]fd.EnhancementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[candidateID]
	out := make([]fd.EnhancementRecord, len(rows))
	copy(out, rows)
	return out, nil
}
