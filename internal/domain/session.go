package domain

import (
	"time"

	pid "fundingdiscovery/pkg/domain"
)

// SearchCriteria is the user-supplied request driving a DiscoverySession.
type SearchCriteria struct {
	Categories       []string
	Geographies      []string
	RecipientTypes   []string
	ProjectScale     string
	Language         string
	MaxResultsPerQuery int
}

// EngineStatistics are per-engine counters folded into a session's totals.
type EngineStatistics struct {
	Engine        string
	QueriesIssued int
	ResultsFound  int
	Errors        int
}

// SessionCounters are a session's aggregate outcome counters. Every raw
// result lands in exactly one bucket.
type SessionCounters struct {
	ResultsFound        int
	CandidatesCreated   int
	DuplicatesSkipped   int
	SpamFiltered        int
	BlacklistedSkipped  int
	InvalidURLsSkipped  int
	HighConfidence      int
	LowConfidence       int
}

// Total returns the number of raw results this session has processed,
// which the candidate-conservation invariant requires to equal the sum of
// every terminal outcome bucket.
func (c SessionCounters) Total() int {
	return c.HighConfidence + c.LowConfidence + c.DuplicatesSkipped +
		c.BlacklistedSkipped + c.SpamFiltered + c.InvalidURLsSkipped
}

// DiscoverySession is one search request end to end.
type DiscoverySession struct {
	ID          pid.SessionID
	Type        SessionType
	Status      SessionStatus
	Criteria    SearchCriteria
	Prompt      string
	ModelID     string
	StartedAt   time.Time
	CompletedAt *time.Time
	Counters    SessionCounters
	PerEngine   []EngineStatistics
}

// Duration reports the session's elapsed wall time, or the time elapsed so
// far when the session is still RUNNING.
func (s DiscoverySession) Duration(now time.Time) time.Duration {
	if s.CompletedAt != nil {
		return s.CompletedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// IsTerminal reports whether the session has left RUNNING, at which point
// its counters and CompletedAt become immutable.
func (s DiscoverySession) IsTerminal() bool {
	return s.Status != SessionStatusRunning
}
