//go:build integration

package domainregistry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/domainregistry"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/testutil/containers"
)

func TestPostgresStore_RegisterOrGet_ConcurrentConverges(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := domainregistry.NewPostgresStore(pg.Pool)
	ctx := context.Background()
	sessionID := pid.NewSessionID()

	const racers = 16
	results := make([]fd.Domain, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := store.RegisterOrGet(ctx, "example.org", sessionID)
			require.NoError(t, err)
			results[i] = d
		}(i)
	}
	wg.Wait()

	// Every racer must see the same row: at most one row per host.
	for _, d := range results[1:] {
		assert.Equal(t, results[0].ID, d.ID)
	}

	var count int
	require.NoError(t, pg.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM domain WHERE host = 'example.org'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPostgresStore_BlacklistSticky(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := domainregistry.NewPostgresStore(pg.Pool)
	ctx := context.Background()

	require.NoError(t, store.Blacklist(ctx, "casinowinners.com", "gambling", "admin"))

	ok, err := store.ShouldProcess(ctx, "casinowinners.com")
	require.NoError(t, err)
	assert.False(t, ok, "blacklisted host must not be processed")

	// Re-registering must not clear the blacklist.
	d, err := store.RegisterOrGet(ctx, "casinowinners.com", pid.NewSessionID())
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusBlacklisted, d.Status)

	require.NoError(t, store.Unblacklist(ctx, "casinowinners.com"))
	ok, err = store.ShouldProcess(ctx, "casinowinners.com")
	require.NoError(t, err)
	assert.True(t, ok, "explicit un-blacklist restores processing")
}

func TestPostgresStore_BackoffScheduleMonotonic(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := domainregistry.NewPostgresStore(pg.Pool)
	ctx := context.Background()

	expected := []time.Duration{time.Hour, 4 * time.Hour, 24 * time.Hour, 7 * 24 * time.Hour}
	var prev time.Time
	for i, want := range expected {
		before := time.Now()
		require.NoError(t, store.RecordFailure(ctx, "flaky.example.net", "timeout"))

		d, err := store.Get(ctx, "flaky.example.net")
		require.NoError(t, err)
		require.NotNil(t, d.RetryAfter)
		assert.Equal(t, fd.DomainStatusProcessingFailed, d.Status)
		assert.Equal(t, i+1, d.FailureCount)
		assert.WithinDuration(t, before.Add(want), *d.RetryAfter, 5*time.Second)

		if i > 0 {
			assert.True(t, !d.RetryAfter.Before(prev), "retry_after must be monotonic in failures")
		}
		prev = *d.RetryAfter
	}
}

func TestPostgresStore_UpdateQualityTransitions(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := domainregistry.NewPostgresStore(pg.Pool)
	ctx := context.Background()
	sessionID := pid.NewSessionID()

	_, err := store.RegisterOrGet(ctx, "lowgrade.info", sessionID)
	require.NoError(t, err)

	// Two lows leave the status unchanged.
	require.NoError(t, store.UpdateQuality(ctx, "lowgrade.info", 30, false))
	require.NoError(t, store.UpdateQuality(ctx, "lowgrade.info", 40, false))
	d, err := store.Get(ctx, "lowgrade.info")
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusDiscovered, d.Status)
	assert.Equal(t, int64(40), d.BestConfidence, "best confidence takes the max")

	// Third cumulative low with zero highs flips to low quality.
	require.NoError(t, store.UpdateQuality(ctx, "lowgrade.info", 20, false))
	d, err = store.Get(ctx, "lowgrade.info")
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusProcessedLowQuality, d.Status)
	assert.Equal(t, 3, d.LowQualityCount)

	// Any high flips to high quality regardless of history.
	_, err = store.RegisterOrGet(ctx, "solid.ngo", sessionID)
	require.NoError(t, err)
	require.NoError(t, store.UpdateQuality(ctx, "solid.ngo", 85, true))
	d, err = store.Get(ctx, "solid.ngo")
	require.NoError(t, err)
	assert.Equal(t, fd.DomainStatusProcessedHighQuality, d.Status)
}
