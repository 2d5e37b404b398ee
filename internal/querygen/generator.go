// Package querygen produces N concise keyword queries and/or N verbose
// AI-optimized queries for a request, backed by a pluggable generator
// with a deterministic fallback set and a result cache keyed by a request
// fingerprint.
package querygen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/querygensession"
	pid "fundingdiscovery/pkg/domain"
	fdstrings "fundingdiscovery/pkg/platform/strings"
)

// Request is the caller-supplied description of desired funding, matching
// the SearchCriteria shape used by the orchestrator.
type Request struct {
	Categories     []string
	Geographies    []string
	RecipientTypes []string
	ProjectScale   string
	Language       string
	Count          int // 1-50
}

// LLMClient is the pluggable query-generation backend. Implementations
// call out to whatever completion endpoint the deployment configures.
type LLMClient interface {
	GenerateQueries(ctx context.Context, prompt string, n int) ([]string, error)
	ModelID() string
}

const (
	// fanOutBudget is the shared timeout across all engines in one
	// GenerateMulti call.
	fanOutBudget = 30 * time.Second
	cacheTTL     = 12 * time.Hour
)

// Generator produces queries for a request, preferring a cached result,
// then the pluggable LLM backend, and falling back to a deterministic
// built-in list when the backend is unavailable, times out, or
// under-delivers.
type Generator struct {
	llm      LLMClient
	cache    *gocache.Cache
	sessions querygensession.Store
	clock    func() time.Time
}

func New(llm LLMClient, sessions querygensession.Store) *Generator {
	return &Generator{
		llm:      llm,
		cache:    gocache.New(cacheTTL, cacheTTL/2),
		sessions: sessions,
		clock:    time.Now,
	}
}

// Template selects which prompt shape to request, per the engine's
// capability flags.
type Template string

const (
	TemplateKeyword    Template = "KEYWORD"
	TemplateAIOptimized Template = "AI_OPTIMIZED"
)

// Fingerprint computes a deterministic cache key for a (request, template)
// pair.
func Fingerprint(req Request, tmpl Template) string {
	normalized := struct {
		Categories     []string
		Geographies    []string
		RecipientTypes []string
		ProjectScale   string
		Language       string
		Count          int
		Template       Template
	}{
		Categories:     sortedCopy(req.Categories),
		Geographies:    sortedCopy(req.Geographies),
		RecipientTypes: sortedCopy(req.RecipientTypes),
		ProjectScale:   req.ProjectScale,
		Language:       req.Language,
		Count:          req.Count,
		Template:       tmpl,
	}
	encoded, _ := json.Marshal(normalized)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// buildPrompt renders the prompt for a template: 3-8-word queries for
// KEYWORD, 15-30-word questions for AI_OPTIMIZED.
func buildPrompt(req Request, tmpl Template) string {
	var b strings.Builder
	switch tmpl {
	case TemplateAIOptimized:
		fmt.Fprintf(&b, "Generate %d detailed search questions (15-30 words each) to find funding opportunities", req.Count)
	default:
		fmt.Fprintf(&b, "Generate %d concise search queries (3-8 words each) to find funding opportunities", req.Count)
	}
	if len(req.Categories) > 0 {
		fmt.Fprintf(&b, " in categories: %s", strings.Join(req.Categories, ", "))
	}
	if len(req.Geographies) > 0 {
		fmt.Fprintf(&b, " for regions: %s", strings.Join(req.Geographies, ", "))
	}
	if len(req.RecipientTypes) > 0 {
		fmt.Fprintf(&b, " benefiting: %s", strings.Join(req.RecipientTypes, ", "))
	}
	if req.ProjectScale != "" {
		fmt.Fprintf(&b, " at %s scale", req.ProjectScale)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, " in %s", req.Language)
	}
	return b.String()
}

// generation is the internal outcome of one template's generation attempt,
// carrying enough detail to populate a QueryGenerationSession audit row.
type generation struct {
	queries      []string
	fallbackUsed bool
	reasons      []string
}

func (g *Generator) generateTemplate(ctx context.Context, req Request, tmpl Template) generation {
	fp := Fingerprint(req, tmpl)
	if cached, ok := g.cache.Get(fp); ok {
		return generation{queries: cached.([]string)}
	}

	if g.llm == nil {
		return g.fallback(tmpl, req.Count, "llm backend not configured")
	}

	prompt := buildPrompt(req, tmpl)
	queries, err := g.llm.GenerateQueries(ctx, prompt, req.Count)
	if err != nil {
		return g.fallback(tmpl, req.Count, fmt.Sprintf("llm error: %v", err))
	}
	queries = fdstrings.DedupeAndTrim(queries)
	if len(queries) < req.Count {
		return g.fallback(tmpl, req.Count, fmt.Sprintf("llm returned %d of %d requested queries", len(queries), req.Count))
	}

	g.cache.Set(fp, queries, cacheTTL)
	return generation{queries: queries}
}

// fallback returns the deterministic built-in list for tmpl, truncated or
// cycled to the requested count. The generator never surfaces an error to
// its caller.
func (g *Generator) fallback(tmpl Template, n int, reason string) generation {
	base := fallbackKeyword
	if tmpl == TemplateAIOptimized {
		base = fallbackAIOptimized
	}
	if n <= 0 {
		n = len(base)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return generation{queries: out, fallbackUsed: true, reasons: []string{reason}}
}

// Generate produces queries for a single template, defaulting to the
// keyword template.
func (g *Generator) Generate(ctx context.Context, req Request) []string {
	return g.generateTemplate(ctx, req, TemplateKeyword).queries
}

// EngineCapability is the subset of adapter.Capabilities GenerateMulti
// needs, kept local to avoid an import cycle with internal/adapter.
type EngineCapability struct {
	Engine                     string
	SupportsKeywordQueries     bool
	SupportsAIOptimizedQueries bool
}

// GenerateMulti produces one query list per engine, selecting the keyword
// or AI-optimized template per the engine's capability flags, fanned out
// in parallel under a shared 30s timeout budget.
func (g *Generator) GenerateMulti(ctx context.Context, sessionID pid.SessionID, engines []EngineCapability, req Request) (map[string][]string, fd.QueryGenerationSession) {
	ctx, cancel := context.WithTimeout(ctx, fanOutBudget)
	defer cancel()

	start := g.clock()
	results := make(map[string][]string, len(engines))
	var mu sync.Mutex

	var anyFallback bool
	var reasons []string
	var totalGenerated int

	grp, gctx := errgroup.WithContext(ctx)
	for _, eng := range engines {
		eng := eng
		grp.Go(func() error {
			tmpl := TemplateKeyword
			if eng.SupportsAIOptimizedQueries && !eng.SupportsKeywordQueries {
				tmpl = TemplateAIOptimized
			}
			gen := g.generateTemplate(gctx, req, tmpl)

			mu.Lock()
			results[eng.Engine] = gen.queries
			totalGenerated += len(gen.queries)
			if gen.fallbackUsed {
				anyFallback = true
				reasons = append(reasons, gen.reasons...)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait() // generateTemplate never returns an error; fan-out never fails

	row := fd.QueryGenerationSession{
		SessionID:        sessionID,
		QueriesRequested: req.Count * len(engines),
		QueriesGenerated: totalGenerated,
		RejectionReasons: reasons,
		Duration:         g.clock().Sub(start),
		FallbackUsed:     anyFallback,
	}
	if g.llm != nil {
		row.Model = g.llm.ModelID()
	}
	if g.sessions != nil {
		if saved, err := g.sessions.Save(ctx, row); err == nil {
			row = saved
		}
	}
	return results, row
}
