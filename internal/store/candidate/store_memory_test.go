package candidate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

func newCandidate(sessionID pid.SessionID, domainID pid.DomainID, status fd.CandidateStatus, confidence int64) fd.FundingSourceCandidate {
	return fd.FundingSourceCandidate{
		SessionID:  sessionID,
		DomainID:   domainID,
		Status:     status,
		Confidence: confidence,
		SourceURL:  "https://example.org/grants",
		Engine:     "keyword_a",
	}
}

func TestCreate_IsIdempotentPerSessionAndDomain(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sessionID, domainID := pid.NewSessionID(), pid.NewDomainID()

	first, err := store.Create(ctx, newCandidate(sessionID, domainID, fd.CandidateStatusPendingCrawl, 75))
	require.NoError(t, err)

	second, err := store.Create(ctx, newCandidate(sessionID, domainID, fd.CandidateStatusPendingCrawl, 75))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "duplicate consumer delivery must not create a second candidate")

	exists, err := store.ExistsForSessionAndDomain(ctx, sessionID, domainID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateStatus_EnforcesMonotonicTransitions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	c, err := store.Create(ctx, newCandidate(pid.NewSessionID(), pid.NewDomainID(), fd.CandidateStatusPendingCrawl, 80))
	require.NoError(t, err)

	require.NoError(t, store.UpdateStatus(ctx, c.ID, fd.CandidateStatusInReview))
	require.NoError(t, store.UpdateStatus(ctx, c.ID, fd.CandidateStatusApproved))

	err = store.UpdateStatus(ctx, c.ID, fd.CandidateStatusRejected)
	assert.ErrorIs(t, err, ErrIllegalTransition, "approved candidates cannot move back to rejected")

	err = store.UpdateStatus(ctx, c.ID, fd.CandidateStatusApproved)
	assert.ErrorIs(t, err, ErrAlreadyInState)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		confidence := int64(50 + i*10)
		_, err := store.Create(ctx, newCandidate(pid.NewSessionID(), pid.NewDomainID(), fd.CandidateStatusPendingCrawl, confidence))
		require.NoError(t, err)
	}

	min := int64(70)
	rows, total, err := store.List(ctx, Filter{MinConfidence: &min, Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, rows, 3)

	rows, total, err = store.List(ctx, Filter{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rows, 2)
}

func TestSaveJudgment_RequiresExistingCandidate(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveJudgment(context.Background(), fd.MetadataJudgment{CandidateID: pid.NewCandidateID()})
	assert.ErrorIs(t, err, ErrNotFound)
}
