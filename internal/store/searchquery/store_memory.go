package searchquery

import (
	"context"
	"sync"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

type MemoryStore struct {
	mu   sync.Mutex
	rows map[pid.SearchQueryID]*fd.SearchQuery
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[pid.SearchQueryID]*fd.SearchQuery)}
}

func (s *MemoryStore) Create(ctx context.Context, q fd.SearchQuery) (fd.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == (pid.SearchQueryID{}) {
		q.ID = pid.NewSearchQueryID()
	}
	stored := q
	s.rows[q.ID] = &stored
	return stored, nil
}

func (s *MemoryStore) Get(ctx context.Context, id pid.SearchQueryID) (fd.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return fd.SearchQuery{}, ErrNotFound
	}
	return *row, nil
}

func (s *MemoryStore) Update(ctx context.Context, q fd.SearchQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[q.ID]; !ok {
		return ErrNotFound
	}
	stored := q
	s.rows[q.ID] = &stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id pid.SearchQueryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore) DueForDay(ctx context.Context, day int) ([]fd.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []fd.SearchQuery
	for _, row := range s.rows {
		if row.Enabled && int(row.DayOfWeek) == day {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]fd.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fd.SearchQuery, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, nil
}
