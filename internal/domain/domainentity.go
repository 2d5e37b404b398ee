package domain

import (
	"strings"
	"time"

	pid "fundingdiscovery/pkg/domain"
)

// Blacklist records who sticky-blacklisted a domain and why.
type Blacklist struct {
	Actor  string
	Reason string
	At     time.Time
}

// Domain is the global host registry keyed by normalized host.
// Host normalization (lowercase, www.-stripped) is the caller's
// responsibility via NormalizeHost; the struct itself stores only the
// already-normalized value.
type Domain struct {
	ID                pid.DomainID
	Host              string
	Status            DomainStatus
	BestConfidence    int64 // fixed-point hundredths, scale 2
	HighQualityCount  int
	LowQualityCount   int
	DiscoveredAt      time.Time
	DiscoverySession  pid.SessionID
	LastProcessedAt   *time.Time
	ProcessingCount   int
	FailureCount      int
	RetryAfter        *time.Time
	Blacklist         *Blacklist
	NoFundsYear       int
	Notes             string
}

// NormalizeHost lowercases a host and strips a leading "www." label. The
// normalized host is the deduplication unit everywhere in the core.
func NormalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimPrefix(h, "www.")
	return h
}

// ShouldProcess reports whether a domain is still worth processing: it is
// skipped when sticky-blacklisted, already judged low quality, exempted
// for the current calendar year, or still inside its backoff window.
func (d Domain) ShouldProcess(now time.Time) bool {
	switch {
	case d.Status == DomainStatusBlacklisted:
		return false
	case d.Status == DomainStatusProcessedLowQuality:
		return false
	case d.Status == DomainStatusNoFundsThisYear && d.NoFundsYear >= now.Year():
		return false
	case d.Status == DomainStatusProcessingFailed && d.RetryAfter != nil && now.Before(*d.RetryAfter):
		return false
	default:
		return true
	}
}

// BackoffDuration implements the failure backoff schedule: 1st failure
// +1h, 2nd +4h, 3rd +1d, 4th and beyond +7d.
func BackoffDuration(failureCount int) time.Duration {
	switch {
	case failureCount <= 1:
		return time.Hour
	case failureCount == 2:
		return 4 * time.Hour
	case failureCount == 3:
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}
