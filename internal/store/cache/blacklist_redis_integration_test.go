//go:build integration

package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingdiscovery/internal/store/cache"
	"fundingdiscovery/internal/store/domainregistry"
	"fundingdiscovery/pkg/testutil/containers"
)

func TestBlacklistCache_RedisWriteThrough(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	store := domainregistry.NewMemoryStore()
	require.NoError(t, store.Blacklist(ctx, "casinowinners.com", "gambling", "admin"))

	bl := cache.New(store, rc.Client)

	// Miss fills both tiers from the authoritative store.
	blacklisted, err := bl.IsBlacklisted(ctx, "casinowinners.com")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	val, err := rc.Client.Get(ctx, "blacklist:casinowinners.com").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", val, "redis tier is filled write-through")

	// A second cache built over the same Redis (fresh L1) hits the L2 tier.
	bl2 := cache.New(store, rc.Client)
	blacklisted, err = bl2.IsBlacklisted(ctx, "casinowinners.com")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestBlacklistCache_InvalidateDropsBothTiers(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	store := domainregistry.NewMemoryStore()
	require.NoError(t, store.Blacklist(ctx, "spamhub.net", "spam", "admin"))

	bl := cache.New(store, rc.Client)
	blacklisted, err := bl.IsBlacklisted(ctx, "spamhub.net")
	require.NoError(t, err)
	require.True(t, blacklisted)

	// Un-blacklist in the store, then invalidate: the next read must see
	// the store's truth, not the stale cached value.
	require.NoError(t, store.Unblacklist(ctx, "spamhub.net"))
	bl.Invalidate(ctx, "spamhub.net")

	blacklisted, err = bl.IsBlacklisted(ctx, "spamhub.net")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	exists, err := rc.Client.Exists(ctx, "blacklist:spamhub.net").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "read after invalidation re-fills the cache")
}

func TestBlacklistCache_SurvivesRedisOutage(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	store := domainregistry.NewMemoryStore()
	require.NoError(t, store.Blacklist(ctx, "offline.example", "test", "admin"))

	bl := cache.New(store, rc.Client)

	// Kill Redis; lookups must bypass to the store, never fail.
	require.NoError(t, rc.Container.Terminate(ctx))

	blacklisted, err := bl.IsBlacklisted(ctx, "offline.example")
	require.NoError(t, err, "cache unavailability is never fatal")
	assert.True(t, blacklisted)
}
