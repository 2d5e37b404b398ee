package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingdiscovery/internal/store/domainregistry"
	pid "fundingdiscovery/pkg/domain"
)

func TestBlacklistCache_MissThenFillThenHit(t *testing.T) {
	store := domainregistry.NewMemoryStore()
	ctx := context.Background()
	_, err := store.RegisterOrGet(ctx, "casinowinners.com", pid.NewSessionID())
	require.NoError(t, err)
	require.NoError(t, store.Blacklist(ctx, "casinowinners.com", "reported scam", "admin"))

	c := New(store, nil)

	blacklisted, err := c.IsBlacklisted(ctx, "casinowinners.com")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// Second lookup should hit the local cache without touching the store.
	blacklisted, err = c.IsBlacklisted(ctx, "casinowinners.com")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestBlacklistCache_UnknownHostIsNotBlacklisted(t *testing.T) {
	store := domainregistry.NewMemoryStore()
	c := New(store, nil)

	blacklisted, err := c.IsBlacklisted(context.Background(), "never-seen.org")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestBlacklistCache_InvalidateForcesStoreReread(t *testing.T) {
	store := domainregistry.NewMemoryStore()
	ctx := context.Background()
	_, err := store.RegisterOrGet(ctx, "reform.org", pid.NewSessionID())
	require.NoError(t, err)

	c := New(store, nil)

	blacklisted, err := c.IsBlacklisted(ctx, "reform.org")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, store.Blacklist(ctx, "reform.org", "new evidence", "admin"))
	c.Invalidate(ctx, "reform.org")

	blacklisted, err = c.IsBlacklisted(ctx, "reform.org")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}
