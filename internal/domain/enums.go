package domain

// SessionType classifies how a DiscoverySession was started.
type SessionType string

const (
	SessionTypeManual    SessionType = "MANUAL"
	SessionTypeScheduled SessionType = "SCHEDULED"
	SessionTypeRetry     SessionType = "RETRY"
)

// SessionStatus tracks a DiscoverySession's lifecycle.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "RUNNING"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusFailed    SessionStatus = "FAILED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// DomainStatus is the lifecycle state of a registered host.
type DomainStatus string

const (
	DomainStatusDiscovered           DomainStatus = "DISCOVERED"
	DomainStatusProcessing           DomainStatus = "PROCESSING"
	DomainStatusProcessedHighQuality DomainStatus = "PROCESSED_HIGH_QUALITY"
	DomainStatusProcessedLowQuality  DomainStatus = "PROCESSED_LOW_QUALITY"
	DomainStatusNoFundsThisYear      DomainStatus = "NO_FUNDS_THIS_YEAR"
	DomainStatusProcessingFailed     DomainStatus = "PROCESSING_FAILED"
	DomainStatusBlacklisted          DomainStatus = "BLACKLISTED"
)

// CandidateStatus is the review lifecycle of a FundingSourceCandidate.
type CandidateStatus string

const (
	CandidateStatusPendingCrawl        CandidateStatus = "PENDING_CRAWL"
	CandidateStatusSkippedLowConfidence CandidateStatus = "SKIPPED_LOW_CONFIDENCE"
	CandidateStatusInReview            CandidateStatus = "IN_REVIEW"
	CandidateStatusApproved            CandidateStatus = "APPROVED"
	CandidateStatusRejected            CandidateStatus = "REJECTED"
)

// ProviderType classifies a search adapter's query style.
type ProviderType string

const (
	ProviderTypeKeyword    ProviderType = "KEYWORD"
	ProviderTypeAIAnswer   ProviderType = "AI_ANSWER"
	ProviderTypeMetaSearch ProviderType = "META_SEARCH"
)

// ErrorCategory is the normalized adapter failure taxonomy.
type ErrorCategory string

const (
	ErrorCategoryAuth        ErrorCategory = "AUTH"
	ErrorCategoryRateLimited ErrorCategory = "RATE_LIMITED"
	ErrorCategoryTimeout     ErrorCategory = "TIMEOUT"
	ErrorCategoryCircuitOpen ErrorCategory = "CIRCUIT_OPEN"
	ErrorCategoryRemote5xx   ErrorCategory = "REMOTE_5XX"
	ErrorCategoryParse       ErrorCategory = "PARSE"
	ErrorCategoryDisabled    ErrorCategory = "DISABLED"
	ErrorCategoryUnknown     ErrorCategory = "UNKNOWN"
)

// EnhancementType classifies who proposed a field change on a candidate.
type EnhancementType string

const (
	EnhancementTypeAISuggested    EnhancementType = "AI_SUGGESTED"
	EnhancementTypeManual         EnhancementType = "MANUAL"
	EnhancementTypeHumanModified  EnhancementType = "HUMAN_MODIFIED"
)

// PipelineStage names the stage at which a WorkflowErrorEvent originated.
type PipelineStage string

const (
	StageSearchExecution    PipelineStage = "SEARCH_EXECUTION"
	StageResultValidation   PipelineStage = "RESULT_VALIDATION"
	StageResultScoring      PipelineStage = "RESULT_SCORING"
	StageQueryGeneration    PipelineStage = "QUERY_GENERATION"
	StageCandidatePersist   PipelineStage = "CANDIDATE_PERSISTENCE"
)
