package querygen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingdiscovery/internal/store/querygensession"
	pid "fundingdiscovery/pkg/domain"
)

type fakeLLM struct {
	queries []string
	err     error
}

func (f *fakeLLM) GenerateQueries(ctx context.Context, prompt string, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queries, nil
}
func (f *fakeLLM) ModelID() string { return "fake-model" }

func TestGenerate_UsesLLMWhenAvailable(t *testing.T) {
	llm := &fakeLLM{queries: []string{"a", "b", "c"}}
	g := New(llm, querygensession.NewMemoryStore())

	got := g.Generate(context.Background(), Request{Count: 3})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestGenerate_FallsBackOnLLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("backend down")}
	g := New(llm, querygensession.NewMemoryStore())

	got := g.Generate(context.Background(), Request{Count: 3})
	require.Len(t, got, 3)
	assert.NotEmpty(t, got[0])
}

func TestGenerate_FallsBackWhenUnderDelivered(t *testing.T) {
	llm := &fakeLLM{queries: []string{"only-one"}}
	g := New(llm, querygensession.NewMemoryStore())

	got := g.Generate(context.Background(), Request{Count: 5})
	assert.Len(t, got, 5)
}

func TestGenerate_NilLLMAlwaysFallsBack(t *testing.T) {
	g := New(nil, querygensession.NewMemoryStore())
	got := g.Generate(context.Background(), Request{Count: 4})
	assert.Len(t, got, 4)
}

func TestGenerate_CacheHitSkipsLLM(t *testing.T) {
	llm := &fakeLLM{queries: []string{"x", "y"}}
	g := New(llm, querygensession.NewMemoryStore())
	req := Request{Count: 2, Categories: []string{"education"}}

	first := g.Generate(context.Background(), req)
	llm.queries = []string{"changed", "changed"}
	second := g.Generate(context.Background(), req)

	assert.Equal(t, first, second)
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := Request{Categories: []string{"education", "health"}, Count: 3}
	b := Request{Categories: []string{"health", "education"}, Count: 3}
	assert.Equal(t, Fingerprint(a, TemplateKeyword), Fingerprint(b, TemplateKeyword))
}

func TestGenerateMulti_SelectsTemplatePerEngine(t *testing.T) {
	llm := &fakeLLM{queries: []string{"q1", "q2"}}
	g := New(llm, querygensession.NewMemoryStore())

	engines := []EngineCapability{
		{Engine: "keyword_a", SupportsKeywordQueries: true},
		{Engine: "ai_answer", SupportsAIOptimizedQueries: true},
	}
	results, row := g.GenerateMulti(context.Background(), pid.NewSessionID(), engines, Request{Count: 2})

	assert.Len(t, results, 2)
	assert.Contains(t, results, "keyword_a")
	assert.Contains(t, results, "ai_answer")
	assert.False(t, row.FallbackUsed)
	assert.Equal(t, 4, row.QueriesGenerated)
}

func TestGenerateMulti_RecordsFallbackReason(t *testing.T) {
	llm := &fakeLLM{err: errors.New("timeout")}
	g := New(llm, querygensession.NewMemoryStore())

	engines := []EngineCapability{{Engine: "keyword_a", SupportsKeywordQueries: true}}
	_, row := g.GenerateMulti(context.Background(), pid.NewSessionID(), engines, Request{Count: 3})

	assert.True(t, row.FallbackUsed)
	assert.NotEmpty(t, row.RejectionReasons)
}
