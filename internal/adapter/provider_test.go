package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
)

type stubProvider struct {
	engine string
	ptype  fd.ProviderType
}

func (s *stubProvider) Engine() string { return s.engine }
func (s *stubProvider) Capabilities() Capabilities {
	return Capabilities{Type: s.ptype, Engine: s.engine, SupportsKeywordQueries: true}
}
func (s *stubProvider) HealthCheck(ctx context.Context) HealthStatus { return HealthStatus{Up: true} }
func (s *stubProvider) Search(ctx context.Context, query string, maxResults int, sessionID string) ([]SearchResult, error) {
	return nil, nil
}

func TestRegistry_RejectsDuplicateEngine(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubProvider{engine: "keyword_a", ptype: fd.ProviderTypeKeyword}))
	err := r.Register(&stubProvider{engine: "keyword_a", ptype: fd.ProviderTypeKeyword})
	assert.Error(t, err)
}

func TestRegistry_ByType(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubProvider{engine: "keyword_a", ptype: fd.ProviderTypeKeyword}))
	require.NoError(t, r.Register(&stubProvider{engine: "keyword_b", ptype: fd.ProviderTypeKeyword}))
	require.NoError(t, r.Register(&stubProvider{engine: "ai_answer", ptype: fd.ProviderTypeAIAnswer}))

	keywordEngines := r.ByType(fd.ProviderTypeKeyword)
	assert.Len(t, keywordEngines, 2)

	all := r.All()
	assert.Len(t, all, 3)

	_, ok := r.Get("meta_search")
	assert.False(t, ok)
}
