package candidate

import (
	"context"
	"sort"
	"sync"
	"time"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

// MemoryStore is a single-mutex in-process implementation, adequate for
// tests and the contract-test harness; production deployments use
// PostgresStore.
type MemoryStore struct {
	mu         sync.RWMutex
	rows       map[pid.CandidateID]*fd.FundingSourceCandidate
	bySession  map[string]pid.CandidateID // "<sessionID>:<domainID>" -> candidate
	judgments  map[pid.CandidateID][]fd.MetadataJudgment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:      make(map[pid.CandidateID]*fd.FundingSourceCandidate),
		bySession: make(map[string]pid.CandidateID),
		judgments: make(map[pid.CandidateID][]fd.MetadataJudgment),
	}
}

func sessionDomainKey(sessionID pid.SessionID, domainID pid.DomainID) string {
	return sessionID.String() + ":" + domainID.String()
}

func (s *MemoryStore) Create(ctx context.Context, c fd.FundingSourceCandidate) (fd.FundingSourceCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := sessionDomainKey(c.SessionID, c.DomainID)
	if existingID, ok := s.bySession[k]; ok {
		return *s.rows[existingID], nil
	}

	if c.ID == (pid.CandidateID{}) {
		c.ID = pid.NewCandidateID()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	stored := c
	s.rows[c.ID] = &stored
	s.bySession[k] = c.ID
	return stored, nil
}

func (s *MemoryStore) Get(ctx context.Context, id pid.CandidateID) (fd.FundingSourceCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return fd.FundingSourceCandidate{}, ErrNotFound
	}
	return *row, nil
}

func (s *MemoryStore) ExistsForSessionAndDomain(ctx context.Context, sessionID pid.SessionID, domainID pid.DomainID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bySession[sessionDomainKey(sessionID, domainID)]
	return ok, nil
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]fd.FundingSourceCandidate, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]fd.FundingSourceCandidate, 0, len(s.rows))
	for _, row := range s.rows {
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.MinConfidence != nil && row.Confidence < *filter.MinConfidence {
			continue
		}
		if filter.SearchEngine != nil && row.Engine != *filter.SearchEngine {
			continue
		}
		if filter.StartDate != nil && row.CreatedAt.Unix() < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && row.CreatedAt.Unix() > *filter.EndDate {
			continue
		}
		matched = append(matched, *row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if filter.SortDirection == "asc" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page, size := filter.Page, filter.Size
	if size <= 0 {
		size = 20
	}
	start := page * size
	if start >= total {
		return []fd.FundingSourceCandidate{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id pid.CandidateID, status fd.CandidateStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	if row.Status == status {
		return ErrAlreadyInState
	}
	if !CanTransition(row.Status, status) {
		return ErrIllegalTransition
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SaveJudgment(ctx context.Context, j fd.MetadataJudgment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[j.CandidateID]; !ok {
		return ErrNotFound
	}
	j.CreatedAt = time.Now()
	s.judgments[j.CandidateID] = append(s.judgments[j.CandidateID], j)
	return nil
}
