// Package searchquery persists the named SearchQuery rows consumed by the
// scheduled-run path.
package searchquery

import (
	"context"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

type Store interface {
	Create(ctx context.Context, q fd.SearchQuery) (fd.SearchQuery, error)
	Get(ctx context.Context, id pid.SearchQueryID) (fd.SearchQuery, error)
	Update(ctx context.Context, q fd.SearchQuery) error
	Delete(ctx context.Context, id pid.SearchQueryID) error

	// DueForDay lists enabled queries scheduled for the given weekday,
	// used by the scheduler to build the day's run.
	DueForDay(ctx context.Context, day int) ([]fd.SearchQuery, error)

	List(ctx context.Context) ([]fd.SearchQuery, error)
}

var ErrNotFound = fderrors.New(fderrors.CodeNotFound, "search query not found")
