// Package querygensession persists one row per query-generator invocation
//: model used, queries requested/generated/approved/rejected,
// rejection reasons, duration, and the fallback flag.
package querygensession

import (
	"context"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

type Store interface {
	Save(ctx context.Context, s fd.QueryGenerationSession) (fd.QueryGenerationSession, error)
	Get(ctx context.Context, id pid.QueryGenSessionID) (fd.QueryGenerationSession, error)
	ListForSession(ctx context.Context, sessionID pid.SessionID) ([]fd.QueryGenerationSession, error)
}

var ErrNotFound = fderrors.New(fderrors.CodeNotFound, "query generation session not found")
