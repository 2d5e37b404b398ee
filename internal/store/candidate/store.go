// Package candidate implements the FundingSourceCandidate and
// MetadataJudgment halves of the domain & candidate store.
package candidate

import (
	"context"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// Filter narrows GET /api/candidates listings.
type Filter struct {
	Status        *fd.CandidateStatus
	MinConfidence *int64
	SearchEngine  *string
	StartDate     *int64 // unix seconds
	EndDate       *int64
	SortBy        string
	SortDirection string
	Page          int
	Size          int
}

// Store is the transactional contract over candidates and their judgments.
type Store interface {
	// Create inserts a candidate, idempotently: a second insert for the
	// same (session, domain) pair returns the existing row instead of
	// erroring, so consumers can safely reprocess redelivered events.
	Create(ctx context.Context, c fd.FundingSourceCandidate) (fd.FundingSourceCandidate, error)

	Get(ctx context.Context, id pid.CandidateID) (fd.FundingSourceCandidate, error)

	// ExistsForSessionAndDomain supports idempotent candidate creation.
	ExistsForSessionAndDomain(ctx context.Context, sessionID pid.SessionID, domainID pid.DomainID) (bool, error)

	List(ctx context.Context, filter Filter) ([]fd.FundingSourceCandidate, int, error)

	// UpdateStatus enforces the monotonic status-transition invariant
	// except for administrator override.
	UpdateStatus(ctx context.Context, id pid.CandidateID, status fd.CandidateStatus) error

	SaveJudgment(ctx context.Context, j fd.MetadataJudgment) error
}

var (
	ErrNotFound          = fderrors.New(fderrors.CodeNotFound, "candidate not found")
	ErrAlreadyInState    = fderrors.New(fderrors.CodeAlreadyInState, "candidate already in requested state")
	ErrIllegalTransition = fderrors.New(fderrors.CodeConflict, "illegal candidate status transition")
)

// legalTransitions encodes the monotonic status machine:
// PENDING_CRAWL/SKIPPED_LOW_CONFIDENCE can move into IN_REVIEW, which can
// move to APPROVED or REJECTED. Administrator override is handled by
// callers bypassing this check explicitly.
var legalTransitions = map[fd.CandidateStatus][]fd.CandidateStatus{
	fd.CandidateStatusPendingCrawl:         {fd.CandidateStatusInReview, fd.CandidateStatusApproved, fd.CandidateStatusRejected},
	fd.CandidateStatusSkippedLowConfidence: {fd.CandidateStatusInReview, fd.CandidateStatusApproved, fd.CandidateStatusRejected},
	fd.CandidateStatusInReview:             {fd.CandidateStatusApproved, fd.CandidateStatusRejected},
}

// CanTransition reports whether moving from 'from' to 'to' is legal under
// the monotonic transition rule.
func CanTransition(from, to fd.CandidateStatus) bool {
	if from == to {
		return false
	}
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
