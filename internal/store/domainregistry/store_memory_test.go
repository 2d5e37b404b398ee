package domainregistry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

func TestExtractDomain(t *testing.T) {
	host, err := ExtractDomain("https://www.Example.COM/grants?x=1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)

	_, err = ExtractDomain("not a url")
	assert.Error(t, err)

	_, err = ExtractDomain("")
	assert.Error(t, err)
}

func TestRegisterOrGet_IsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sessionID := pid.NewSessionID()

	first, err := store.RegisterOrGet(ctx, "example.org", sessionID)
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusDiscovered, first.Status)

	second, err := store.RegisterOrGet(ctx, "example.org", pid.NewSessionID())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-registering the same host must return the existing row")
}

func TestRegisterOrGet_ConcurrentRacesConverge(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	ids := make([]pid.DomainID, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			d, err := store.RegisterOrGet(ctx, "racey.org", pid.NewSessionID())
			require.NoError(t, err)
			ids[i] = d.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i], "domain uniqueness: concurrent registration must converge on one row")
	}
}

func TestShouldProcess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	allowed, err := store.ShouldProcess(ctx, "never-seen.org")
	require.NoError(t, err)
	assert.True(t, allowed)

	_, err = store.RegisterOrGet(ctx, "blacklist-me.org", pid.NewSessionID())
	require.NoError(t, err)
	require.NoError(t, store.Blacklist(ctx, "blacklist-me.org", "scam reports", "admin"))

	allowed, err = store.ShouldProcess(ctx, "blacklist-me.org")
	require.NoError(t, err)
	assert.False(t, allowed, "blacklist monotonic: must stay false until explicit unblacklist")

	require.NoError(t, store.Unblacklist(ctx, "blacklist-me.org"))
	allowed, err = store.ShouldProcess(ctx, "blacklist-me.org")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRecordFailure_BackoffMonotonicity(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.RegisterOrGet(ctx, "flaky.org", pid.NewSessionID())
	require.NoError(t, err)

	var prev *fd.Domain
	for i := 0; i < 4; i++ {
		require.NoError(t, store.RecordFailure(ctx, "flaky.org", "timeout"))
		d, err := store.Get(ctx, "flaky.org")
		require.NoError(t, err)
		assert.Equal(t, fd.DomainStatusProcessingFailed, d.Status)
		require.NotNil(t, d.RetryAfter)
		if prev != nil {
			assert.True(t, !d.RetryAfter.Before(*prev.RetryAfter),
				"retry_after after N+1 failures must be >= after N failures")
		}
		prev = &d
	}
}

func TestUpdateQuality_TransitionsOnThreeLows(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.RegisterOrGet(ctx, "low-quality.org", pid.NewSessionID())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.UpdateQuality(ctx, "low-quality.org", 40, false))
		d, err := store.Get(ctx, "low-quality.org")
		require.NoError(t, err)
		assert.NotEqual(t, fd.DomainStatusProcessedLowQuality, d.Status)
	}

	require.NoError(t, store.UpdateQuality(ctx, "low-quality.org", 40, false))
	d, err := store.Get(ctx, "low-quality.org")
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusProcessedLowQuality, d.Status)
}

func TestUpdateQuality_AnyHighTransitionsImmediately(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.RegisterOrGet(ctx, "high-quality.org", pid.NewSessionID())
	require.NoError(t, err)

	require.NoError(t, store.UpdateQuality(ctx, "high-quality.org", 90, true))
	d, err := store.Get(ctx, "high-quality.org")
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusProcessedHighQuality, d.Status)
	assert.Equal(t, int64(90), d.BestConfidence)
}
