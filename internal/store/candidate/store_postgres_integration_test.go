//go:build integration

package candidate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/candidate"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/testutil/containers"
)

func TestPostgresStore_CreateIdempotentOnSessionAndDomain(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := candidate.NewPostgresStore(pg.Pool)
	ctx := context.Background()

	c := fd.FundingSourceCandidate{
		Status:     fd.CandidateStatusPendingCrawl,
		Confidence: 90,
		DomainID:   pid.NewDomainID(),
		SessionID:  pid.NewSessionID(),
		SourceURL:  "https://example.ngo/grants",
		Metadata:   fd.CandidateMetadata{Title: "European Commission Grants"},
		Engine:     "keyword_a",
	}

	first, err := store.Create(ctx, c)
	require.NoError(t, err)

	// Reprocessing the same raw result must not create a second row.
	c.ID = pid.CandidateID{}
	second, err := store.Create(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int
	require.NoError(t, pg.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM funding_source_candidate`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPostgresStore_StatusTransitions(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := candidate.NewPostgresStore(pg.Pool)
	ctx := context.Background()

	created, err := store.Create(ctx, fd.FundingSourceCandidate{
		Status:     fd.CandidateStatusPendingCrawl,
		Confidence: 75,
		DomainID:   pid.NewDomainID(),
		SessionID:  pid.NewSessionID(),
		Engine:     "keyword_b",
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdateStatus(ctx, created.ID, fd.CandidateStatusApproved))

	// Approving again reports the already-in-state conflict.
	err = store.UpdateStatus(ctx, created.ID, fd.CandidateStatusApproved)
	require.Error(t, err)
	assert.True(t, fderrors.HasCode(err, fderrors.CodeAlreadyInState))

	// Unknown candidate yields not-found.
	err = store.UpdateStatus(ctx, pid.NewCandidateID(), fd.CandidateStatusApproved)
	require.Error(t, err)
	assert.True(t, fderrors.HasCode(err, fderrors.CodeNotFound))
}
