package usage

import (
	"context"
	"sync"
	"time"

	fd "fundingdiscovery/internal/domain"
)

type MemoryStore struct {
	mu   sync.Mutex
	rows []fd.ProviderAPIUsage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(ctx context.Context, u fd.ProviderAPIUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now()
	}
	s.rows = append(s.rows, u)
	return nil
}

func (s *MemoryStore) CountSince(ctx context.Context, provider string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.rows {
		if row.Provider == provider && row.Timestamp.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) RecentFailureRate(ctx context.Context, provider string, cutoff time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total, failed int
	for _, row := range s.rows {
		if row.Provider != provider || !row.Timestamp.After(cutoff) {
			continue
		}
		total++
		if !row.Success {
			failed++
		}
	}
	if total == 0 {
		return 0, nil
	}
	return float64(failed) / float64(total), nil
}
