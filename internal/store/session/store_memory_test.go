package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
)

func TestIncrementCounters_RejectsTerminalSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sess, err := store.Create(ctx, fd.DiscoverySession{Type: fd.SessionTypeManual})
	require.NoError(t, err)

	require.NoError(t, store.IncrementCounters(ctx, sess.ID, fd.SessionCounters{HighConfidence: 1}))

	_, err = store.Complete(ctx, sess.ID, fd.SessionStatusCompleted)
	require.NoError(t, err)

	err = store.IncrementCounters(ctx, sess.ID, fd.SessionCounters{HighConfidence: 1})
	assert.ErrorIs(t, err, ErrTerminal, "counters must be immutable once a session is terminal")
}

func TestComplete_IsIdempotentForSameStatus(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sess, err := store.Create(ctx, fd.DiscoverySession{Type: fd.SessionTypeManual})
	require.NoError(t, err)

	first, err := store.Complete(ctx, sess.ID, fd.SessionStatusCompleted)
	require.NoError(t, err)

	second, err := store.Complete(ctx, sess.ID, fd.SessionStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)

	_, err = store.Complete(ctx, sess.ID, fd.SessionStatusFailed)
	assert.ErrorIs(t, err, ErrTerminal, "cannot flip terminal status once set")
}

func TestListRunning_OnlyReturnsRunningSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	running, err := store.Create(ctx, fd.DiscoverySession{Type: fd.SessionTypeManual})
	require.NoError(t, err)
	done, err := store.Create(ctx, fd.DiscoverySession{Type: fd.SessionTypeManual})
	require.NoError(t, err)
	_, err = store.Complete(ctx, done.ID, fd.SessionStatusCompleted)
	require.NoError(t, err)

	rows, err := store.ListRunning(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, running.ID, rows[0].ID)
}

func TestCandidateConservationInvariant(t *testing.T) {
	counters := fd.SessionCounters{
		HighConfidence:     3,
		LowConfidence:      2,
		DuplicatesSkipped:  1,
		BlacklistedSkipped: 1,
		SpamFiltered:       1,
		InvalidURLsSkipped: 1,
	}
	assert.Equal(t, 9, counters.Total())
}
