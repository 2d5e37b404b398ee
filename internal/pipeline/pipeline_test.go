package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingdiscovery/internal/adapter"
	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/candidate"
	"fundingdiscovery/internal/store/domainregistry"
	pid "fundingdiscovery/pkg/domain"
)

type fakeBlacklist struct{ hosts map[string]bool }

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, host string) (bool, error) {
	return f.hosts[host], nil
}

func newTestPipeline(bl *fakeBlacklist) *Pipeline {
	return New(Config{
		DomainStore:    domainregistry.NewMemoryStore(),
		CandidateStore: candidate.NewMemoryStore(),
		Blacklist:      bl,
		Threshold:      60,
	})
}

func TestPipeline_TLDFilter(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{}})
	state := NewSessionState(pid.NewSessionID())

	res, err := p.ProcessOne(context.Background(), state, fd.SearchCriteria{}, adapter.SearchResult{
		URL: "https://spam.xyz/grants", Title: "Grants available", Engine: "keyword_a",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSpamTLD, res.Outcome)
	assert.Equal(t, 1, state.Counters().SpamFiltered)
	assert.Nil(t, res.Candidate)
}

func TestPipeline_Deduplication(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{}})
	state := NewSessionState(pid.NewSessionID())
	ctx := context.Background()

	_, err := p.ProcessOne(ctx, state, fd.SearchCriteria{}, adapter.SearchResult{URL: "https://example.org/a", Engine: "keyword_a"})
	require.NoError(t, err)
	res, err := p.ProcessOne(ctx, state, fd.SearchCriteria{}, adapter.SearchResult{URL: "https://example.org/b", Engine: "keyword_a"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.Equal(t, 1, state.Counters().DuplicatesSkipped)
}

func TestPipeline_Blacklist(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{"casinowinners.com": true}})
	state := NewSessionState(pid.NewSessionID())

	res, err := p.ProcessOne(context.Background(), state, fd.SearchCriteria{}, adapter.SearchResult{
		URL: "https://casinowinners.com/grants", Engine: "keyword_a",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlacklisted, res.Outcome)
	assert.Equal(t, 1, state.Counters().BlacklistedSkipped)
}

func TestPipeline_HighAndLowConfidenceBothCreateCandidates(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{}})
	state := NewSessionState(pid.NewSessionID())
	ctx := context.Background()

	high, err := p.ProcessOne(ctx, state, fd.SearchCriteria{Geographies: []string{"Bulgaria"}}, adapter.SearchResult{
		URL: "https://example.ngo/x", Title: "European Commission Grants for Bulgaria",
		Description: "Apply for funding and scholarships today", Engine: "keyword_a",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeHighConfidence, high.Outcome)
	require.NotNil(t, high.Candidate)
	assert.Equal(t, fd.CandidateStatusPendingCrawl, high.Candidate.Status)

	low, err := p.ProcessOne(ctx, state, fd.SearchCriteria{}, adapter.SearchResult{
		URL: "https://unrelated-site.com/y", Title: "unrelated", Engine: "keyword_a",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLowConfidence, low.Outcome)
	require.NotNil(t, low.Candidate)
	assert.Equal(t, fd.CandidateStatusSkippedLowConfidence, low.Candidate.Status)
}

func TestPipeline_InvalidURL(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{}})
	state := NewSessionState(pid.NewSessionID())

	res, err := p.ProcessOne(context.Background(), state, fd.SearchCriteria{}, adapter.SearchResult{URL: "", Engine: "keyword_a"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalidURL, res.Outcome)
}

func TestPipeline_IdempotentWithinSession(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{}})
	state := NewSessionState(pid.NewSessionID())
	ctx := context.Background()

	result := adapter.SearchResult{URL: "https://example.org/a", Title: "Grant", Engine: "keyword_a"}
	_, err := p.ProcessOne(ctx, state, fd.SearchCriteria{}, result)
	require.NoError(t, err)
	second, err := p.ProcessOne(ctx, state, fd.SearchCriteria{}, result)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	counters := state.Counters()
	assert.Equal(t, 1, counters.CandidatesCreated)
	assert.Equal(t, counters.Total(), counters.ResultsFound)
}

func TestSnapshot_CandidateConservation(t *testing.T) {
	p := newTestPipeline(&fakeBlacklist{hosts: map[string]bool{}})
	state := NewSessionState(pid.NewSessionID())
	ctx := context.Background()

	inputs := []adapter.SearchResult{
		{URL: "https://a.xyz/1", Title: "grants"},
		{URL: "https://b.org/1", Title: "grants foundation ministry council funding scholarships"},
		{URL: "https://b.org/2", Title: "duplicate host"},
		{URL: "not-a-url"},
	}
	for _, in := range inputs {
		in.Engine = "keyword_a"
		_, err := p.ProcessOne(ctx, state, fd.SearchCriteria{Geographies: []string{"national"}}, in)
		require.NoError(t, err)
	}

	stats := Snapshot(state)
	c := stats.Counters
	assert.Equal(t, c.Total(), c.ResultsFound)
	assert.Equal(t, len(inputs), c.ResultsFound)
}
