package domain

import (
	"time"

	pid "fundingdiscovery/pkg/domain"
)

// CandidateMetadata is the title/snippet captured from the search result
// that produced a candidate.
type CandidateMetadata struct {
	Title       string
	Snippet     string
	OrgName     string
	ProgramName string
}

// FundingSourceCandidate is one (domain, session) pair that survived the
// result-processing pipeline.
type FundingSourceCandidate struct {
	ID                 pid.CandidateID
	Status             CandidateStatus
	Confidence         int64 // fixed-point hundredths, scale 2, set once
	DomainID           pid.DomainID
	SessionID          pid.SessionID
	SourceURL          string
	Metadata           CandidateMetadata
	Engine             string
	Categories         []string
	GeographicScope    []string
	OrganizationTypes  []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ReviewerID         *string
}

// MetadataJudgment is the per-judge score breakdown behind a candidate's
// confidence. Immutable after insert.
type MetadataJudgment struct {
	CandidateID          pid.CandidateID
	FundingKeywordsScore int64
	DomainCredibilityScore int64
	GeographicRelevanceScore int64
	OrganizationTypeScore int64
	Aggregate            int64
	KeywordsFound        []string
	Engine               string
	CreatedAt            time.Time
}

// EnhancementRecord is the append-only audit log of field changes proposed
// against a candidate.
type EnhancementRecord struct {
	ID             pid.EnhancementID
	CandidateID    pid.CandidateID
	Actor          string
	Type           EnhancementType
	FieldName      string
	OriginalValue  string
	SuggestedValue string
	Notes          string
	ModelID        string
	Confidence     *int64
	Approved       *bool
	TimeSpent      time.Duration
	CreatedAt      time.Time
}

// ProviderAPIUsage is one row per outbound call to an external search
// engine, used to enforce rolling rate limits.
type ProviderAPIUsage struct {
	Provider     string
	Query        string
	ResultCount  int
	Success      bool
	ResponseTime time.Duration
	Timestamp    time.Time
}

// SearchQuery is an optional persisted named query for scheduled runs
//, consumed only by the scheduled path.
type SearchQuery struct {
	ID         pid.SearchQueryID
	Text       string
	DayOfWeek  time.Weekday
	Engines    []string
	Tags       []string
	Enabled    bool
}
