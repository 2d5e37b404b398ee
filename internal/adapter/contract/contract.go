// Package contract provides a reusable conformance suite every Provider
// implementation must pass: normalized results, sane capability flags,
// and classified failures.
package contract

import (
	"context"
	"testing"

	fd "fundingdiscovery/internal/adapter"
	domainfd "fundingdiscovery/internal/domain"
)

// SearchTest validates a single successful Search call.
type SearchTest struct {
	Name         string
	Provider     fd.Provider
	Query        string
	MaxResults   int
	SessionID    string
	ValidateFunc func(results []fd.SearchResult) error
}

// Suite bundles the conformance tests for one provider instance.
type Suite struct {
	Engine string
	Tests  []SearchTest
}

func (s *Suite) Run(t *testing.T) {
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			ctx := context.Background()
			results, err := test.Provider.Search(ctx, test.Query, test.MaxResults, test.SessionID)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			for _, r := range results {
				if r.Engine != s.Engine {
					t.Errorf("expected engine %s, got %s", s.Engine, r.Engine)
				}
				if r.Host == "" {
					t.Error("result missing normalized host")
				}
				if r.Rank < 1 {
					t.Errorf("rank must be 1-based, got %d", r.Rank)
				}
			}
			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(results); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// CapabilityTest validates that a provider declares sane capabilities.
type CapabilityTest struct {
	Provider fd.Provider
}

func (ct *CapabilityTest) Run(t *testing.T) {
	caps := ct.Provider.Capabilities()
	if caps.Type == "" {
		t.Error("provider type not set")
	}
	if caps.Engine == "" {
		t.Error("engine name not set")
	}
	if !caps.SupportsKeywordQueries && !caps.SupportsAIOptimizedQueries {
		t.Error("provider must support at least one query style")
	}
}

// ErrorContractTest validates that a provider's failures classify into
// the normalized error taxonomy.
type ErrorContractTest struct {
	Name          string
	Provider      fd.Provider
	Query         string
	ExpectedError domainfd.ErrorCategory
	ExpectedRetry bool
}

func (ect *ErrorContractTest) Run(t *testing.T) {
	ctx := context.Background()
	_, err := ect.Provider.Search(ctx, ect.Query, 10, "contract-test-session")
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if category := fd.Category(err); category != ect.ExpectedError {
		t.Errorf("expected error category %s, got %s", ect.ExpectedError, category)
	}
	if retryable := fd.IsRetryable(err); retryable != ect.ExpectedRetry {
		t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, retryable)
	}
}
