package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pid "fundingdiscovery/pkg/domain"
)

func TestWorkflowErrorEvent_Valid(t *testing.T) {
	evt := WorkflowErrorEvent{
		ErrorID:         pid.NewErrorID(),
		SessionID:       pid.NewSessionID(),
		Stage:           StageSearchExecution,
		ErrorType:       ErrorCategoryTimeout,
		Message:         "deadline exceeded",
		OriginalPayload: []byte(`{"query":"grants"}`),
		Timestamp:       time.Now(),
	}
	assert.True(t, evt.Valid())

	assert.False(t, WorkflowErrorEvent{ErrorType: ErrorCategoryTimeout, OriginalPayload: []byte("x")}.Valid(),
		"missing stage")
	assert.False(t, WorkflowErrorEvent{Stage: StageResultScoring, OriginalPayload: []byte("x")}.Valid(),
		"missing error type")
	assert.False(t, WorkflowErrorEvent{Stage: StageResultScoring, ErrorType: ErrorCategoryParse}.Valid(),
		"missing payload")
}

func TestWorkflowErrorEvent_PayloadRoundTrips(t *testing.T) {
	original := SearchRequestEvent{
		SessionID:  pid.NewSessionID(),
		Query:      "education grants bulgaria",
		Engine:     "keyword_a",
		MaxResults: 20,
		Timestamp:  time.Unix(1700000000, 0).UTC(),
	}
	payload, err := json.Marshal(original)
	require.NoError(t, err)

	evt := WorkflowErrorEvent{
		ErrorID:         pid.NewErrorID(),
		SessionID:       original.SessionID,
		Stage:           StageSearchExecution,
		ErrorType:       ErrorCategoryRemote5xx,
		OriginalPayload: payload,
	}
	encoded, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded WorkflowErrorEvent
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	var replayed SearchRequestEvent
	require.NoError(t, json.Unmarshal(decoded.OriginalPayload, &replayed),
		"the original payload must survive a dead-letter round trip re-parseable")
	assert.Equal(t, original, replayed)
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "example.org", NormalizeHost("WWW.Example.ORG"))
	assert.Equal(t, "example.org", NormalizeHost("  example.org "))
	assert.Equal(t, "sub.example.org", NormalizeHost("sub.example.org"))
}

func TestBackoffDuration_Schedule(t *testing.T) {
	assert.Equal(t, time.Hour, BackoffDuration(1))
	assert.Equal(t, 4*time.Hour, BackoffDuration(2))
	assert.Equal(t, 24*time.Hour, BackoffDuration(3))
	assert.Equal(t, 7*24*time.Hour, BackoffDuration(4))
	assert.Equal(t, 7*24*time.Hour, BackoffDuration(9))
}

func TestDomainShouldProcess_NoFundsYearExpires(t *testing.T) {
	d := Domain{Status: DomainStatusNoFundsThisYear, NoFundsYear: 2025}

	within := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, d.ShouldProcess(within))

	nextYear := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, d.ShouldProcess(nextYear), "the exemption expires once the year rolls over")
}

func TestDomainShouldProcess_RetryAfterWindow(t *testing.T) {
	retry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := Domain{Status: DomainStatusProcessingFailed, RetryAfter: &retry}

	assert.False(t, d.ShouldProcess(retry.Add(-time.Minute)))
	assert.True(t, d.ShouldProcess(retry.Add(time.Minute)))
}
