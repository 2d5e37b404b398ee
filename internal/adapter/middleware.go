package adapter

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/usage"
	"fundingdiscovery/pkg/platform/circuit"
)

// Call is the underlying engine invocation a middleware stack wraps.
type Call func(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

// MiddlewareConfig configures the composed
// rateLimit(retry(circuitBreak(timeout(call)))) stack.
type MiddlewareConfig struct {
	Engine       string
	Timeout      time.Duration
	MaxRetries   int
	RateLimit    int           // calls allowed per RateWindow
	RateWindow   time.Duration
	Breaker      *circuit.Breaker
	UsageStore   usage.Store
	Clock        func() time.Time
}

// Wrap composes the full middleware stack around call: rate limit is
// checked first (the usage-store count, then the local token bucket), so a
// call over budget issues no request; then retry governs the
// circuit-breaker-guarded, timeout-bounded call.
func Wrap(cfg MiddlewareConfig, call Call) Call {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	limiter := rate.NewLimiter(rate.Every(cfg.RateWindow/time.Duration(maxInt(cfg.RateLimit, 1))), cfg.RateLimit)

	timed := withTimeout(cfg.Timeout, call)
	breakered := withCircuitBreaker(cfg.Engine, cfg.Breaker, timed)
	retried := withRetry(cfg.Engine, cfg.MaxRetries, clock, breakered)
	return withRateLimit(cfg.Engine, cfg.UsageStore, cfg.RateLimit, cfg.RateWindow, clock, limiter, retried)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func withTimeout(d time.Duration, call Call) Call {
	return func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		results, err := call(ctx, query, maxResults)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(fd.ErrorCategoryTimeout, "", "request exceeded timeout", err)
		}
		return results, err
	}
}

// withCircuitBreaker short-circuits to a deterministic UNAVAILABLE result
// while the breaker is OPEN, issuing no requests.
func withCircuitBreaker(engine string, b *circuit.Breaker, call Call) Call {
	return func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		if b.IsOpen() {
			return nil, NewError(fd.ErrorCategoryCircuitOpen, engine, "circuit open, using fallback", nil)
		}
		results, err := call(ctx, query, maxResults)
		if err != nil {
			b.RecordFailure()
			return nil, err
		}
		b.RecordSuccess()
		return results, nil
	}
}

// withRetry applies jittered exponential backoff, retrying only transient
// categories.
func withRetry(engine string, maxRetries int, clock func() time.Time, call Call) Call {
	return func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			results, err := call(ctx, query, maxResults)
			if err == nil {
				return results, nil
			}
			lastErr = err
			if !IsRetryable(err) || attempt == maxRetries {
				return nil, err
			}

			base := time.Duration(1<<uint(attempt)) * 200 * time.Millisecond
			jitter := time.Duration(rand.Int63n(int64(base) + 1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(base/2 + jitter/2):
			}
		}
		return nil, lastErr
	}
}

// withRateLimit enforces the engine's configured call budget (limit calls
// per window; 24h when window is unset) before issuing any request,
// consulting the usage log first. Central accounting goes through
// usage.Store so multi-process deployments stay consistent.
func withRateLimit(engine string, store usage.Store, limit int, window time.Duration, clock func() time.Time, limiter *rate.Limiter, call Call) Call {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		if store != nil && limit > 0 {
			count, err := store.CountSince(ctx, engine, clock().Add(-window))
			if err == nil && count >= limit {
				return nil, NewError(fd.ErrorCategoryRateLimited, engine, "rate limit exceeded", nil)
			}
		}
		if !limiter.Allow() {
			return nil, NewError(fd.ErrorCategoryRateLimited, engine, "local rate limit exceeded", nil)
		}

		start := clock()
		results, err := call(ctx, query, maxResults)

		if store != nil {
			_ = store.Record(ctx, fd.ProviderAPIUsage{
				Provider:     engine,
				Query:        query,
				ResultCount:  len(results),
				Success:      err == nil,
				ResponseTime: clock().Sub(start),
				Timestamp:    start,
			})
		}
		return results, err
	}
}
