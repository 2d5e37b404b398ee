package httptransport

import (
	"context"
	"net/http"
	"time"

	"fundingdiscovery/internal/adapter"
	"fundingdiscovery/pkg/httputil"
)

// Pinger is anything with a connectivity probe (cmd/server passes the pgx
// pool's Ping and the redis wrapper's Health method values directly).
type Pinger func(ctx context.Context) error

// HealthHandler aggregates store, cache, and per-adapter health into the
// readiness probe. Liveness (/healthz) stays a bare 200 so a wedged
// dependency never gets the process restarted for someone else's outage.
type HealthHandler struct {
	postgres Pinger
	redis    Pinger
	registry *adapter.Registry
}

func NewHealthHandler(postgres, redis Pinger, registry *adapter.Registry) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis, registry: registry}
}

type engineHealth struct {
	Engine       string `json:"engine"`
	Up           bool   `json:"up"`
	CircuitState string `json:"circuitState"`
	LastError    string `json:"lastError,omitempty"`
}

type readyResponse struct {
	Ready    bool           `json:"ready"`
	Postgres string         `json:"postgres"`
	Redis    string         `json:"redis"`
	Engines  []engineHealth `json:"engines"`
}

// HandleLiveness is the bare liveness probe.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadiness reports whether the process can do useful work: the
// store must answer, the cache is reported but never gates readiness
// (availability must not depend on it), and each adapter's circuit state
// is included for operators.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := readyResponse{Ready: true, Postgres: "up", Redis: "up"}

	if h.postgres != nil {
		if err := h.postgres(ctx); err != nil {
			resp.Postgres = "down"
			resp.Ready = false
		}
	}
	if h.redis != nil {
		if err := h.redis(ctx); err != nil {
			resp.Redis = "down"
		}
	}
	if h.registry != nil {
		for _, p := range h.registry.All() {
			status := p.HealthCheck(ctx)
			resp.Engines = append(resp.Engines, engineHealth{
				Engine:       p.Engine(),
				Up:           status.Up,
				CircuitState: status.CircuitState,
				LastError:    status.LastError,
			})
		}
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
