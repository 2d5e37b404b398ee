// Package enhancement implements the append-only EnhancementRecord log
//: every proposed field change on a candidate, human or AI
// sourced, is recorded and never edited or deleted.
package enhancement

import (
	"context"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

type Store interface {
	// Append inserts a new record. Rejects records whose CreatedAt is set
	// and predates the most recent record for the same candidate by more
	// than the allowed clock-skew tolerance, guarding the append-only
	// ordering invariant against backdated writes.
	Append(ctx context.Context, r fd.EnhancementRecord) (fd.EnhancementRecord, error)

	ListForCandidate(ctx context.Context, candidateID pid.CandidateID) ([]fd.EnhancementRecord, error)
}

var ErrBackdated = fderrors.New(fderrors.CodeConflict, "enhancement record predates the candidate's log head")
