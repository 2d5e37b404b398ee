package domain

import (
	"time"

	pid "fundingdiscovery/pkg/domain"
)

// SearchRequestEvent is published once per (engine, query) pair when a
// session is initiated.
type SearchRequestEvent struct {
	SessionID  pid.SessionID `json:"sessionId"`
	Query      string        `json:"query"`
	Engine     string        `json:"engine"`
	MaxResults int           `json:"maxResults"`
	Timestamp  time.Time     `json:"timestamp"`
}

// SearchResultEvent is published once per adapter hit.
type SearchResultEvent struct {
	SessionID   pid.SessionID `json:"sessionId"`
	URL         string        `json:"url"`
	Host        string        `json:"host"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Engine      string        `json:"engine"`
	Rank        int           `json:"rank"`
	Timestamp   time.Time     `json:"timestamp"`
}

// ValidatedResultEvent extends SearchResultEvent with the resolved domain
// identity once it has passed extraction.
type ValidatedResultEvent struct {
	SearchResultEvent
	DomainID pid.DomainID `json:"domainId"`
}

// WorkflowErrorEvent is the dead-letter schema: every consumer failure
// publishes one of these instead of retrying in-place.
type WorkflowErrorEvent struct {
	ErrorID         pid.ErrorID    `json:"errorId"`
	SessionID       pid.SessionID  `json:"sessionId"`
	RequestID       string         `json:"requestId,omitempty"`
	Stage           PipelineStage  `json:"stage"`
	ErrorType       ErrorCategory  `json:"errorType"`
	Message         string         `json:"message"`
	StackTrace      string         `json:"stackTrace,omitempty"`
	RetryCount      int            `json:"retryCount"`
	OriginalPayload []byte         `json:"originalPayload"`
	Context         map[string]string `json:"context,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Valid reports whether the event is complete enough to replay: a
// non-empty stage and errorType, and a non-empty original payload
// (schema-specific re-parsing is the consumer's responsibility).
func (e WorkflowErrorEvent) Valid() bool {
	return e.Stage != "" && e.ErrorType != "" && len(e.OriginalPayload) > 0
}

// QueryGenerationSession records one invocation of the query generator.
type QueryGenerationSession struct {
	ID                pid.QueryGenSessionID
	SessionID         pid.SessionID
	Model             string
	QueriesRequested  int
	QueriesGenerated  int
	QueriesApproved   int
	QueriesRejected   int
	RejectionReasons  []string
	Duration          time.Duration
	FallbackUsed      bool
	CreatedAt         time.Time
}
