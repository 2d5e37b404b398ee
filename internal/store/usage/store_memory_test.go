package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
)

func TestCountSince_OnlyCountsWithinWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "keyword_a", Timestamp: now.Add(-2 * time.Hour), Success: true}))
	require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "keyword_a", Timestamp: now.Add(-5 * time.Minute), Success: true}))
	require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "keyword_b", Timestamp: now.Add(-5 * time.Minute), Success: true}))

	count, err := store.CountSince(ctx, "keyword_a", now.Add(-1*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecentFailureRate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "ai_answer", Timestamp: now, Success: true}))
	require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "ai_answer", Timestamp: now, Success: false}))
	require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "ai_answer", Timestamp: now, Success: false}))

	rate, err := store.RecentFailureRate(ctx, "ai_answer", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, rate, 0.0001)
}

func TestRecentFailureRate_NoCallsReturnsZero(t *testing.T) {
	store := NewMemoryStore()
	rate, err := store.RecentFailureRate(context.Background(), "meta_search", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, rate)
}
