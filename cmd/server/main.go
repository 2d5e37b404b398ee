// Command server runs the funding-discovery core as a single process:
// the HTTP ingress API, the three event-bus stage consumers, and the
// soft-deadline sweep, all sharing one set of stores, adapters, and
// metrics.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundingdiscovery/internal/bootstrap"
	"fundingdiscovery/internal/platform/config"
	"fundingdiscovery/internal/platform/httpserver"
	httptransport "fundingdiscovery/internal/transport/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fundingdiscovery server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	consumers, err := bootstrap.NewStageConsumers(cfg)
	if err != nil {
		return err
	}
	defer bootstrap.CloseStageConsumers(consumers)

	searchHandler := httptransport.NewSearchHandler(rt.Orchestrator, rt.Logger)
	candidatesHandler := httptransport.NewCandidatesHandler(rt.Candidates).WithEnhancementLog(rt.Enhancements)
	adminHandler := httptransport.NewAdminHandler(rt.Domains, rt.Blacklist)
	healthHandler := httptransport.NewHealthHandler(rt.Pool.Ping, rt.Redis.Health, rt.Registry)
	router := httptransport.NewRouter(searchHandler, candidatesHandler, adminHandler, healthHandler, rt.Logger)

	mux := http.NewServeMux()
	mux.Handle("/", router)
	mux.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.HTTPAddr, mux)

	errCh := make(chan error, 1)
	go func() {
		rt.Logger.Info("starting fundingdiscovery server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go rt.Orchestrator.RunSoftDeadlineSweep(ctx, time.Minute)

	go func() {
		if err := rt.Orchestrator.Run(ctx, consumers); err != nil && !errors.Is(err, context.Canceled) {
			rt.Logger.Error("orchestrator consumer loop exited", "error", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return httpserver.Shutdown(srv, 10*time.Second)
}
