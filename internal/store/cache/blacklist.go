// Package cache implements the blacklist write-through cache: keyed by
// "blacklist:<host>", 24h TTL, explicit invalidation on any domain
// mutation that affects blacklist state, and a store fallback when the
// cache is unreachable so availability never depends on it. Two tiers are
// layered: an in-process go-cache L1 that avoids a network round trip on
// hot hosts, and a shared Redis L2.
package cache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/domainregistry"
)

const (
	blacklistTTL   = 24 * time.Hour
	localCacheSize = 10000
	keyPrefix      = "blacklist:"
)

var lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "fundingdiscovery_blacklist_cache_lookup_seconds",
	Help:    "Blacklist cache lookup latency by outcome (hit, miss, bypass).",
	Buckets: prometheus.DefBuckets,
}, []string{"outcome"})

// BlacklistCache is the derived view over the domain table's blacklist
// state. The domain table remains the source of
// truth; this cache only accelerates reads.
type BlacklistCache struct {
	local *gocache.Cache
	redis *redis.Client // nil disables the L2 tier
	store domainregistry.Store
}

func New(store domainregistry.Store, redisClient *redis.Client) *BlacklistCache {
	return &BlacklistCache{
		local: gocache.New(blacklistTTL, blacklistTTL/2),
		redis: redisClient,
		store: store,
	}
}

func key(host string) string { return keyPrefix + host }

// IsBlacklisted implements the read path: cache lookup, then on miss an
// authoritative store query, then a cache fill.
func (c *BlacklistCache) IsBlacklisted(ctx context.Context, host string) (bool, error) {
	start := time.Now()
	k := key(host)

	if v, found := c.local.Get(k); found {
		lookupDuration.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		return v.(bool), nil
	}

	if c.redis != nil {
		val, err := c.redis.Get(ctx, k).Result()
		switch {
		case err == nil:
			blacklisted := val == "1"
			c.local.Set(k, blacklisted, blacklistTTL)
			lookupDuration.WithLabelValues("hit").Observe(time.Since(start).Seconds())
			return blacklisted, nil
		case errors.Is(err, redis.Nil):
			// fall through to store lookup
		default:
			// Redis unreachable: bypass, never fatal.
			lookupDuration.WithLabelValues("bypass").Observe(time.Since(start).Seconds())
		}
	}

	d, err := c.store.Get(ctx, host)
	blacklisted := err == nil && d.Status == fd.DomainStatusBlacklisted
	c.fill(ctx, host, blacklisted)
	lookupDuration.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	return blacklisted, nil
}

func (c *BlacklistCache) fill(ctx context.Context, host string, blacklisted bool) {
	k := key(host)
	c.local.Set(k, blacklisted, blacklistTTL)
	if c.redis == nil {
		return
	}
	val := "0"
	if blacklisted {
		val = "1"
	}
	// Best-effort: cache writes never block availability.
	_ = c.redis.Set(ctx, k, val, blacklistTTL).Err()
}

// Invalidate drops both cache tiers for host. Callers invoke this on any
// domain mutation that changes blacklist state.
func (c *BlacklistCache) Invalidate(ctx context.Context, host string) {
	k := key(host)
	c.local.Delete(k)
	if c.redis != nil {
		_ = c.redis.Del(ctx, k).Err()
	}
}
