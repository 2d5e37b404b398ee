package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/usage"
	"fundingdiscovery/pkg/platform/circuit"
)

func alwaysSucceeds(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	return []SearchResult{{URL: "https://example.org", Host: "example.org", Rank: 1}}, nil
}

func TestWrap_RateLimitBlocksCallsOverDailyQuota(t *testing.T) {
	store := usage.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, fd.ProviderAPIUsage{Provider: "keyword_a", Timestamp: now, Success: true}))
	}

	wrapped := Wrap(MiddlewareConfig{
		Engine:     "keyword_a",
		Timeout:    time.Second,
		MaxRetries: 0,
		RateLimit:  5,
		RateWindow: 24 * time.Hour,
		Breaker:    circuit.New("keyword_a"),
		UsageStore: store,
		Clock:      func() time.Time { return now },
	}, alwaysSucceeds)

	_, err := wrapped(ctx, "grants", 10)
	require.Error(t, err)
	assert.Equal(t, fd.ErrorCategoryRateLimited, Category(err))
}

func TestWrap_CircuitOpensAfterFailuresAndShortCircuits(t *testing.T) {
	calls := 0
	failing := func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		calls++
		return nil, NewError(fd.ErrorCategoryRemote5xx, "keyword_b", "boom", nil)
	}

	breaker := circuit.New("keyword_b", circuit.WithFailureThreshold(2))
	wrapped := Wrap(MiddlewareConfig{
		Engine:     "keyword_b",
		Timeout:    time.Second,
		MaxRetries: 0,
		RateLimit:  100,
		RateWindow: time.Minute,
		Breaker:    breaker,
		UsageStore: usage.NewMemoryStore(),
	}, failing)

	ctx := context.Background()
	_, err := wrapped(ctx, "q", 10)
	require.Error(t, err)
	_, err = wrapped(ctx, "q", 10)
	require.Error(t, err)

	callsBeforeOpen := calls
	_, err = wrapped(ctx, "q", 10)
	require.Error(t, err)
	assert.Equal(t, fd.ErrorCategoryCircuitOpen, Category(err))
	assert.Equal(t, callsBeforeOpen, calls, "circuit open must short-circuit without invoking the call")
}

func TestWrap_RetriesTransientFailuresUpToMax(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		attempts++
		if attempts < 3 {
			return nil, NewError(fd.ErrorCategoryTimeout, "meta_search", "transient", nil)
		}
		return []SearchResult{{Host: "ok.org", Rank: 1}}, nil
	}

	wrapped := Wrap(MiddlewareConfig{
		Engine:     "meta_search",
		Timeout:    time.Second,
		MaxRetries: 3,
		RateLimit:  100,
		RateWindow: time.Minute,
		Breaker:    circuit.New("meta_search"),
		UsageStore: usage.NewMemoryStore(),
	}, flaky)

	results, err := wrapped(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 3, attempts)
}

func TestWrap_DoesNotRetryTerminalCategories(t *testing.T) {
	attempts := 0
	authFailure := func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		attempts++
		return nil, NewError(fd.ErrorCategoryAuth, "ai_answer", "bad token", nil)
	}

	wrapped := Wrap(MiddlewareConfig{
		Engine:     "ai_answer",
		Timeout:    time.Second,
		MaxRetries: 3,
		RateLimit:  100,
		RateWindow: time.Minute,
		Breaker:    circuit.New("ai_answer"),
		UsageStore: usage.NewMemoryStore(),
	}, authFailure)

	_, err := wrapped(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "AUTH is a terminal category and must fail immediately")
}
