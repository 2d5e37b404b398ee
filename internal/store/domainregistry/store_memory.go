package domainregistry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// numShards is the number of per-host shard locks; a host's shard lock
// orders operations on that host.
const numShards = 128

var (
	shardLockWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fundingdiscovery_domain_shard_lock_wait_seconds",
		Help:    "Time spent waiting to acquire a domain-registry shard lock.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	shardLockAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundingdiscovery_domain_shard_lock_acquisitions_total",
		Help: "Total domain-registry shard lock acquisitions.",
	})
)

// MemoryStore is an in-process Store backed by a map. Operations on a host
// take that host's shard lock (FNV-1a hash of the host); every access to
// the rows map also takes the single mu, so writes to distinct hosts still
// serialize on it.
type MemoryStore struct {
	shards [numShards]sync.Mutex
	rows   map[string]*fd.Domain
	mu     sync.RWMutex // guards the rows map itself (inserts/lookups)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*fd.Domain)}
}

func hashHost(host string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(host); i++ {
		h ^= uint32(host[i])
		h *= fnvPrime
	}
	return h
}

func (s *MemoryStore) withShard(host string, fn func() error) error {
	shard := int(hashHost(host) % numShards)
	start := time.Now()
	s.shards[shard].Lock()
	shardLockWaitDuration.Observe(time.Since(start).Seconds())
	shardLockAcquisitions.Inc()
	defer s.shards[shard].Unlock()
	return fn()
}

func (s *MemoryStore) lookup(host string) (*fd.Domain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.rows[host]
	return d, ok
}

func (s *MemoryStore) RegisterOrGet(ctx context.Context, host string, sessionID pid.SessionID) (fd.Domain, error) {
	var result fd.Domain
	err := s.withShard(host, func() error {
		if err := ctx.Err(); err != nil {
			return fderrors.Wrap(fderrors.CodeTimeout, "context cancelled before registration", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.rows[host]; ok {
			result = *existing
			return nil
		}
		d := &fd.Domain{
			ID:               pid.NewDomainID(),
			Host:             host,
			Status:           fd.DomainStatusDiscovered,
			DiscoveredAt:     time.Now(),
			DiscoverySession: sessionID,
		}
		s.rows[host] = d
		result = *d
		return nil
	})
	return result, err
}

func (s *MemoryStore) Get(ctx context.Context, host string) (fd.Domain, error) {
	d, ok := s.lookup(host)
	if !ok {
		return fd.Domain{}, ErrNotFound
	}
	return *d, nil
}

func (s *MemoryStore) ShouldProcess(ctx context.Context, host string) (bool, error) {
	d, ok := s.lookup(host)
	if !ok {
		return true, nil // never seen: process
	}
	return d.ShouldProcess(time.Now()), nil
}

func (s *MemoryStore) UpdateQuality(ctx context.Context, host string, confidence int64, isHighQuality bool) error {
	return s.withShard(host, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.rows[host]
		if !ok {
			return ErrNotFound
		}
		if confidence > d.BestConfidence {
			d.BestConfidence = confidence
		}
		now := time.Now()
		d.LastProcessedAt = &now
		if isHighQuality {
			d.HighQualityCount++
			d.Status = fd.DomainStatusProcessedHighQuality
			return nil
		}
		d.LowQualityCount++
		if d.HighQualityCount == 0 && d.LowQualityCount >= 3 {
			d.Status = fd.DomainStatusProcessedLowQuality
		}
		return nil
	})
}

func (s *MemoryStore) Blacklist(ctx context.Context, host, reason, actor string) error {
	return s.withShard(host, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.rows[host]
		if !ok {
			d = &fd.Domain{ID: pid.NewDomainID(), Host: host, DiscoveredAt: time.Now()}
			s.rows[host] = d
		}
		d.Status = fd.DomainStatusBlacklisted
		d.Blacklist = &fd.Blacklist{Actor: actor, Reason: reason, At: time.Now()}
		return nil
	})
}

func (s *MemoryStore) Unblacklist(ctx context.Context, host string) error {
	return s.withShard(host, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.rows[host]
		if !ok {
			return ErrNotFound
		}
		d.Status = fd.DomainStatusDiscovered
		d.Blacklist = nil
		return nil
	})
}

func (s *MemoryStore) MarkNoFunds(ctx context.Context, host string, year int, notes string) error {
	return s.withShard(host, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.rows[host]
		if !ok {
			return ErrNotFound
		}
		d.Status = fd.DomainStatusNoFundsThisYear
		d.NoFundsYear = year
		d.Notes = notes
		return nil
	})
}

func (s *MemoryStore) RecordFailure(ctx context.Context, host string, reason string) error {
	return s.withShard(host, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.rows[host]
		if !ok {
			d = &fd.Domain{ID: pid.NewDomainID(), Host: host, DiscoveredAt: time.Now()}
			s.rows[host] = d
		}
		d.FailureCount++
		d.Status = fd.DomainStatusProcessingFailed
		d.Notes = reason
		retryAfter := time.Now().Add(fd.BackoffDuration(d.FailureCount))
		d.RetryAfter = &retryAfter
		return nil
	})
}
