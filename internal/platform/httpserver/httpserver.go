// Package httpserver builds the core's HTTP server with the timeout
// posture a search-orchestration ingress needs: request bodies are tiny
// (criteria payloads), so header/read timeouts stay tight, while write
// timeouts leave room for paged candidate listings.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// New builds an HTTP server with the defaults used by cmd/server.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Shutdown drains srv within the given grace period.
func Shutdown(srv *http.Server, grace time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(ctx)
}
