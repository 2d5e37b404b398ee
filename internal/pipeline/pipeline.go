// Package pipeline implements the seven-stage per-result processing flow:
// domain extraction, spam-TLD filter, in-session deduplication, blacklist
// check, confidence scoring, threshold classification, and candidate
// persistence. Every stage is pure or touches only read-only store
// lookups except the final persistence stage.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fundingdiscovery/internal/adapter"
	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/platform/metrics"
	"fundingdiscovery/internal/scoring"
	"fundingdiscovery/internal/store/candidate"
	"fundingdiscovery/internal/store/domainregistry"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// Outcome names the terminal bucket a single result lands in, matching
// the session counters it increments.
type Outcome string

const (
	OutcomeInvalidURL      Outcome = "invalid_url"
	OutcomeSpamTLD         Outcome = "spam_tld"
	OutcomeDuplicate       Outcome = "duplicate"
	OutcomeBlacklisted     Outcome = "blacklisted"
	OutcomeHighConfidence  Outcome = "high_confidence"
	OutcomeLowConfidence   Outcome = "low_confidence"
)

// Result is what ProcessOne returns for a single raw search result: the
// outcome bucket it landed in, and the persisted candidate when one was
// created. Both high and low confidence create a row; only the status
// differs.
type Result struct {
	Outcome   Outcome
	Candidate *fd.FundingSourceCandidate
}

// BlacklistChecker is the narrow interface the pipeline needs from
// internal/store/cache.BlacklistCache, kept as an interface so tests can
// substitute a fake without standing up Redis.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, host string) (bool, error)
}

// Config configures a Pipeline instance.
type Config struct {
	DomainStore       domainregistry.Store
	CandidateStore    candidate.Store
	Blacklist         BlacklistChecker
	Threshold         int64 // fixed-point hundredths; default 60 (0.60)
	AntiSpamPolicy    scoring.AntiSpamPolicy
	Metrics           *metrics.Metrics
	Logger            *slog.Logger
	Clock             func() time.Time
}

// Pipeline runs the seven-stage result-processing flow for one or more
// concurrent sessions. A single Pipeline instance is shared across the
// scoring consumer's worker pool; per-session state lives in SessionState.
type Pipeline struct {
	cfg Config
}

func New(cfg Config) *Pipeline {
	if cfg.Threshold == 0 {
		cfg.Threshold = 60
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.AntiSpamPolicy == "" {
		cfg.AntiSpamPolicy = scoring.AntiSpamDisabled
	}
	return &Pipeline{cfg: cfg}
}

// SessionState holds the per-session seen-host set (maintained by stage 3)
// and running counters (bumped by every stage's outcome). The scoring consumer tolerates raw events
// arriving in any order for a given session, so this set is safe to
// reconstruct lazily from persisted validated events as well as
// maintained in-memory for a live session.
type SessionState struct {
	sessionID pid.SessionID

	mu       sync.Mutex
	seen     map[string]bool
	counters fd.SessionCounters
}

// NewSessionState creates empty per-session pipeline state.
func NewSessionState(sessionID pid.SessionID) *SessionState {
	return &SessionState{sessionID: sessionID, seen: make(map[string]bool)}
}

// Seed pre-populates the seen-host set, used when reconstituting state
// from previously validated events for a session that is being resumed.
func (s *SessionState) Seed(hosts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hosts {
		s.seen[h] = true
	}
}

// Counters returns a snapshot of the session's running counters.
func (s *SessionState) Counters() fd.SessionCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

func (s *SessionState) addSeen(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[host] {
		return false
	}
	s.seen[host] = true
	return true
}

func (s *SessionState) bump(outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch outcome {
	case OutcomeInvalidURL:
		s.counters.InvalidURLsSkipped++
	case OutcomeSpamTLD:
		s.counters.SpamFiltered++
	case OutcomeDuplicate:
		s.counters.DuplicatesSkipped++
	case OutcomeBlacklisted:
		s.counters.BlacklistedSkipped++
	case OutcomeHighConfidence:
		s.counters.HighConfidence++
		s.counters.CandidatesCreated++
	case OutcomeLowConfidence:
		s.counters.LowConfidence++
		s.counters.CandidatesCreated++
	}
	s.counters.ResultsFound++
}

// ProcessOne runs a single raw SearchResult through all seven stages,
// mutating state's counters and returning which outcome bucket it landed
// in. It never returns an error for a normal classification outcome;
// errors are reserved for persistence failures the caller must
// dead-letter.
func (p *Pipeline) ProcessOne(ctx context.Context, state *SessionState, criteria fd.SearchCriteria, result adapter.SearchResult) (Result, error) {
	// Stage 1: domain extraction.
	host, err := domainregistry.ExtractDomain(result.URL)
	if err != nil || host == "" {
		state.bump(OutcomeInvalidURL)
		p.observe("domain_extraction", "invalid")
		return Result{Outcome: OutcomeInvalidURL}, nil
	}

	// Stage 2: spam-TLD filter.
	if scoring.IsSpamTLD(host) {
		state.bump(OutcomeSpamTLD)
		p.observe("spam_tld_filter", "rejected")
		return Result{Outcome: OutcomeSpamTLD}, nil
	}

	// Stage 3: in-session deduplication.
	if !state.addSeen(host) {
		state.bump(OutcomeDuplicate)
		p.observe("dedup", "duplicate")
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	// Stage 4: blacklist check.
	if p.cfg.Blacklist != nil {
		blacklisted, err := p.cfg.Blacklist.IsBlacklisted(ctx, host)
		if err == nil && blacklisted {
			state.bump(OutcomeBlacklisted)
			p.observe("blacklist_check", "blocked")
			return Result{Outcome: OutcomeBlacklisted}, nil
		}
	}

	// Stage 5: confidence scoring.
	judgment := scoring.Score(scoring.Input{
		Title:         result.Title,
		Description:   result.Description,
		Host:          host,
		TargetRegions: criteria.Geographies,
	})

	if p.cfg.AntiSpamPolicy == scoring.AntiSpamPreFilter {
		if flags := scoring.DetectAntiSpam(host, result.Title, result.Description); flags.Any() {
			state.bump(OutcomeSpamTLD)
			p.observe("anti_spam_prefilter", "rejected")
			return Result{Outcome: OutcomeSpamTLD}, nil
		}
	}
	if p.cfg.AntiSpamPolicy == scoring.AntiSpamScoreZero {
		if flags := scoring.DetectAntiSpam(host, result.Title, result.Description); flags.Any() {
			judgment.Aggregate = 0
		}
	}

	// Stage 6: threshold classification. Both branches create a candidate;
	// only the status differs.
	isHigh := judgment.Aggregate >= p.cfg.Threshold
	outcome := OutcomeLowConfidence
	status := fd.CandidateStatusSkippedLowConfidence
	if isHigh {
		outcome = OutcomeHighConfidence
		status = fd.CandidateStatusPendingCrawl
	}

	// Stage 7: candidate persistence.
	domainRow, err := p.cfg.DomainStore.RegisterOrGet(ctx, host, state.sessionID)
	if err != nil {
		return Result{}, fderrors.Wrap(fderrors.CodeInternal, "register domain failed", err)
	}

	candidateRow, err := p.persistWithRetry(ctx, fd.FundingSourceCandidate{
		Status:    status,
		Confidence: judgment.Aggregate,
		DomainID:  domainRow.ID,
		SessionID: state.sessionID,
		SourceURL: result.URL,
		Metadata: fd.CandidateMetadata{
			Title:   result.Title,
			Snippet: result.Description,
		},
		Engine: result.Engine,
	})
	if err != nil {
		return Result{}, err
	}

	if err := p.cfg.CandidateStore.SaveJudgment(ctx, judgment.ToMetadataJudgment(candidateRow.ID, result.Engine)); err != nil {
		p.log(ctx, "failed to save metadata judgment", "error", err, "candidate_id", candidateRow.ID.String())
	}

	if err := p.cfg.DomainStore.UpdateQuality(ctx, host, judgment.Aggregate, isHigh); err != nil {
		p.log(ctx, "failed to update domain quality", "error", err, "host", host)
	}

	state.bump(outcome)
	p.observe("threshold_classification", string(outcome))
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.CandidatesCreated.WithLabelValues(string(status)).Inc()
	}

	return Result{Outcome: outcome, Candidate: &candidateRow}, nil
}

// persistWithRetry retries a persistence failure once; a second failure
// aborts the per-result path without affecting sibling results. The
// dead-letter publish itself is the caller's responsibility (the
// orchestrator's scoring consumer wraps ProcessOne); this just bounds the
// retry.
func (p *Pipeline) persistWithRetry(ctx context.Context, c fd.FundingSourceCandidate) (fd.FundingSourceCandidate, error) {
	row, err := p.cfg.CandidateStore.Create(ctx, c)
	if err == nil {
		return row, nil
	}
	row, err = p.cfg.CandidateStore.Create(ctx, c)
	if err != nil {
		return fd.FundingSourceCandidate{}, fderrors.Wrap(fderrors.CodeInternal, "candidate persistence failed twice", err)
	}
	return row, nil
}

func (p *Pipeline) observe(stage, outcome string) {
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.PipelineStageOutcomes.WithLabelValues(stage, outcome).Inc()
	}
}

func (p *Pipeline) log(ctx context.Context, msg string, args ...any) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.WarnContext(ctx, msg, args...)
	}
}

// Statistics is the per-session summary produced once a session's raw
// results have all been processed.
type Statistics struct {
	SessionID pid.SessionID
	Counters  fd.SessionCounters
}

// Snapshot returns the final processing statistics for state. Total
// equals the sum of every terminal bucket by construction of bump.
func Snapshot(state *SessionState) Statistics {
	return Statistics{SessionID: state.sessionID, Counters: state.Counters()}
}
