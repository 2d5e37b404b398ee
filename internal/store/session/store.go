// Package session implements the DiscoverySession store.
// Once a session leaves RUNNING, its counters, engine stats and CompletedAt
// are immutable: IncrementCounters and RecordEngineStats return ErrTerminal
// for terminal rows, and Complete refuses a different terminal status.
package session

import (
	"context"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

type Store interface {
	Create(ctx context.Context, s fd.DiscoverySession) (fd.DiscoverySession, error)
	Get(ctx context.Context, id pid.SessionID) (fd.DiscoverySession, error)

	// IncrementCounters applies a delta atomically; it is a no-op error if
	// the session is already terminal.
	IncrementCounters(ctx context.Context, id pid.SessionID, delta fd.SessionCounters) error

	// RecordEngineStats appends/merges one engine's statistics for the run.
	RecordEngineStats(ctx context.Context, id pid.SessionID, stats fd.EngineStatistics) error

	// Complete finalizes a session with a terminal status; idempotent if
	// already in that terminal status.
	Complete(ctx context.Context, id pid.SessionID, status fd.SessionStatus) (fd.DiscoverySession, error)

	// ListRunning returns sessions still RUNNING, used by the soft-deadline
	// sweep.
	ListRunning(ctx context.Context) ([]fd.DiscoverySession, error)

	List(ctx context.Context, page, size int) ([]fd.DiscoverySession, int, error)
}

var (
	ErrNotFound    = fderrors.New(fderrors.CodeNotFound, "session not found")
	ErrTerminal    = fderrors.New(fderrors.CodeConflict, "session already terminal")
)
