// Package httptransport is the thin ingress REST layer: it validates
// requests, delegates to the orchestrator and candidate store, and never
// embeds business logic of its own. One Handler struct per resource, a
// Register(chi.Router) method, and pkg/httputil's
// DecodeAndPrepare/WriteError/WriteJSON trio for the request/response
// envelope.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fundingdiscovery/pkg/platform/middleware/requesttime"
	"fundingdiscovery/pkg/requestcontext"
)

// NewRouter wires the ingress endpoints, the admin surface, and the
// health probes behind the shared observability middleware stack.
// admin and health may be nil for callers (tests) that only exercise the
// /api surface.
func NewRouter(search *SearchHandler, candidates *CandidatesHandler, admin *AdminHandler, health *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(injectRequestID)
	r.Use(accessLog(logger))

	r.Route("/api", func(api chi.Router) {
		search.Register(api)
		candidates.Register(api)
		if admin != nil {
			admin.Register(api)
		}
	})

	if health != nil {
		r.Get("/healthz", health.HandleLiveness)
		r.Get("/readyz", health.HandleReadiness)
	} else {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}

	return r
}

// injectRequestID bridges chi's request-ID middleware into
// requestcontext, so handlers and the services they call read it via
// requestcontext.RequestID instead of reaching into chi directly.
func injectRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chimiddleware.GetReqID(r.Context())
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if logger != nil {
				logger.InfoContext(r.Context(), "http request",
					"request_id", requestcontext.RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		})
	}
}
