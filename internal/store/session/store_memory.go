package session

import (
	"context"
	"sort"
	"sync"
	"time"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

type MemoryStore struct {
	mu   sync.Mutex
	rows map[pid.SessionID]*fd.DiscoverySession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[pid.SessionID]*fd.DiscoverySession)}
}

func (s *MemoryStore) Create(ctx context.Context, sess fd.DiscoverySession) (fd.DiscoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == (pid.SessionID{}) {
		sess.ID = pid.NewSessionID()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	if sess.Status == "" {
		sess.Status = fd.SessionStatusRunning
	}
	stored := sess
	s.rows[sess.ID] = &stored
	return stored, nil
}

func (s *MemoryStore) Get(ctx context.Context, id pid.SessionID) (fd.DiscoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return fd.DiscoverySession{}, ErrNotFound
	}
	return *row, nil
}

func (s *MemoryStore) IncrementCounters(ctx context.Context, id pid.SessionID, delta fd.SessionCounters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	if row.IsTerminal() {
		return ErrTerminal
	}
	row.Counters.ResultsFound += delta.ResultsFound
	row.Counters.CandidatesCreated += delta.CandidatesCreated
	row.Counters.DuplicatesSkipped += delta.DuplicatesSkipped
	row.Counters.SpamFiltered += delta.SpamFiltered
	row.Counters.BlacklistedSkipped += delta.BlacklistedSkipped
	row.Counters.InvalidURLsSkipped += delta.InvalidURLsSkipped
	row.Counters.HighConfidence += delta.HighConfidence
	row.Counters.LowConfidence += delta.LowConfidence
	return nil
}

func (s *MemoryStore) RecordEngineStats(ctx context.Context, id pid.SessionID, stats fd.EngineStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	if row.IsTerminal() {
		return ErrTerminal
	}
	for i, existing := range row.PerEngine {
		if existing.Engine == stats.Engine {
			row.PerEngine[i].QueriesIssued += stats.QueriesIssued
			row.PerEngine[i].ResultsFound += stats.ResultsFound
			row.PerEngine[i].Errors += stats.Errors
			return nil
		}
	}
	row.PerEngine = append(row.PerEngine, stats)
	return nil
}

func (s *MemoryStore) Complete(ctx context.Context, id pid.SessionID, status fd.SessionStatus) (fd.DiscoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return fd.DiscoverySession{}, ErrNotFound
	}
	if row.IsTerminal() {
		if row.Status == status {
			return *row, nil
		}
		return fd.DiscoverySession{}, ErrTerminal
	}
	now := time.Now()
	row.Status = status
	row.CompletedAt = &now
	return *row, nil
}

func (s *MemoryStore) ListRunning(ctx context.Context) ([]fd.DiscoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []fd.DiscoverySession
	for _, row := range s.rows {
		if row.Status == fd.SessionStatusRunning {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context, page, size int) ([]fd.DiscoverySession, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]fd.DiscoverySession, 0, len(s.rows))
	for _, row := range s.rows {
		all = append(all, *row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartedAt.After(all[j].StartedAt) })

	total := len(all)
	if size <= 0 {
		size = 20
	}
	start := page * size
	if start >= total {
		return []fd.DiscoverySession{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
