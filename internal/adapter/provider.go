// Package adapter implements the uniform search-engine adapter contract:
// a single interface over heterogeneous engines (keyword search APIs, a
// self-hosted meta-search instance, an AI-answer engine), each wrapped in
// the same rate-limit/retry/circuit-breaker/timeout middleware stack.
package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	fd "fundingdiscovery/internal/domain"
)

// SearchResult is one normalized hit from an engine.
type SearchResult struct {
	URL         string
	Host        string
	Title       string
	Description string
	Rank        int
	Engine      string
	DiscoveredAt time.Time
	SessionID   string
}

// Capabilities advertises what an engine supports.
type Capabilities struct {
	Type                       fd.ProviderType
	Engine                     string
	SupportsKeywordQueries     bool
	SupportsAIOptimizedQueries bool
}

// HealthStatus reports liveness for an adapter instance.
type HealthStatus struct {
	Up           bool
	CircuitState string
	LastError    string
}

// Provider is the universal contract every search adapter implements.
type Provider interface {
	Engine() string
	Capabilities() Capabilities
	Search(ctx context.Context, query string, maxResults int, sessionID string) ([]SearchResult, error)
	HealthCheck(ctx context.Context) HealthStatus
}

// Registry holds all configured adapters, keyed by engine name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Engine()]; exists {
		return fmt.Errorf("adapter: engine %s already registered", p.Engine())
	}
	r.providers[p.Engine()] = p
	return nil
}

func (r *Registry) Get(engine string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[engine]
	return p, ok
}

func (r *Registry) ByType(t fd.ProviderType) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Provider
	for _, p := range r.providers {
		if p.Capabilities().Type == t {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}
