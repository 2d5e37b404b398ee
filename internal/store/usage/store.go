// Package usage records ProviderAPIUsage rows and answers the rolling-window
// queries that the adapter layer's rate limiter relies on.
package usage

import (
	"context"
	"time"

	fd "fundingdiscovery/internal/domain"
)

type Store interface {
	Record(ctx context.Context, u fd.ProviderAPIUsage) error

	// CountSince returns how many calls a provider made since cutoff,
	// backing the "N calls per window" rate-limit check.
	CountSince(ctx context.Context, provider string, cutoff time.Time) (int, error)

	// RecentFailureRate reports the fraction of calls to provider that
	// failed since cutoff, used for health-check/alerting signals.
	RecentFailureRate(ctx context.Context, provider string, cutoff time.Time) (float64, error)
}
