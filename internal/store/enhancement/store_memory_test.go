package enhancement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

func TestAppend_BuildsOrderedLog(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	candidateID := pid.NewCandidateID()

	_, err := store.Append(ctx, fd.EnhancementRecord{CandidateID: candidateID, FieldName: "org_name", Type: fd.EnhancementTypeManual})
	require.NoError(t, err)
	_, err = store.Append(ctx, fd.EnhancementRecord{CandidateID: candidateID, FieldName: "program_name", Type: fd.EnhancementTypeAISuggested})
	require.NoError(t, err)

	rows, err := store.ListForCandidate(ctx, candidateID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "org_name", rows[0].FieldName)
	assert.Equal(t, "program_name", rows[1].FieldName)
}

func TestAppend_RejectsBackdatedRecord(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	candidateID := pid.NewCandidateID()

	_, err := store.Append(ctx, fd.EnhancementRecord{CandidateID: candidateID, FieldName: "org_name", CreatedAt: time.Now()})
	require.NoError(t, err)

	_, err = store.Append(ctx, fd.EnhancementRecord{
		CandidateID: candidateID,
		FieldName:   "program_name",
		CreatedAt:   time.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrBackdated)
}
