// Package bootstrap builds the shared set of stores, adapters, and
// services both cmd/server and cmd/cli depend on, so the two processes
// construct identical collaborators from the same Config instead of each
// hand-wiring its own copy.
package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fundingdiscovery/internal/adapter"
	"fundingdiscovery/internal/orchestrator"
	"fundingdiscovery/internal/pipeline"
	"fundingdiscovery/internal/platform/config"
	"fundingdiscovery/internal/platform/db"
	"fundingdiscovery/internal/platform/logger"
	"fundingdiscovery/internal/platform/metrics"
	"fundingdiscovery/internal/platform/redis"
	"fundingdiscovery/internal/querygen"
	"fundingdiscovery/internal/store/cache"
	"fundingdiscovery/internal/store/candidate"
	"fundingdiscovery/internal/store/domainregistry"
	"fundingdiscovery/internal/store/enhancement"
	"fundingdiscovery/internal/store/querygensession"
	"fundingdiscovery/internal/store/searchquery"
	"fundingdiscovery/internal/store/session"
	"fundingdiscovery/internal/store/usage"
	"fundingdiscovery/pkg/platform/circuit"
	"fundingdiscovery/pkg/platform/kafka"
)

// Runtime holds every shared collaborator. Callers (cmd/server, cmd/cli)
// pick the pieces they need and are responsible for closing Pool, Redis,
// and Producer when done.
type Runtime struct {
	Config config.Config
	Logger *slog.Logger
	Metrics *metrics.Metrics

	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Producer *kafka.Producer

	Sessions      session.Store
	Candidates    candidate.Store
	Domains       domainregistry.Store
	QueryGen      querygensession.Store
	Usage         usage.Store
	Enhancements  enhancement.Store
	SearchQueries searchquery.Store

	Blacklist *cache.BlacklistCache
	Registry  *adapter.Registry
	Generator *querygen.Generator
	Pipeline  *pipeline.Pipeline

	Orchestrator *orchestrator.Orchestrator
}

// New connects to every backing store and bus, registers engine adapters,
// and assembles the orchestrator. ctx bounds connection setup only, not
// the runtime's subsequent lifetime.
func New(ctx context.Context, cfg config.Config) (*Runtime, error) {
	log := logger.New(logger.FormatJSON, slog.LevelInfo)
	met := metrics.New()

	pool, err := db.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.New(redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	if err := kafka.EnsureTopics(ctx, cfg.BusBrokers); err != nil {
		pool.Close()
		redisClient.Close()
		return nil, err
	}
	producer, err := kafka.NewProducer(cfg.BusBrokers)
	if err != nil {
		pool.Close()
		redisClient.Close()
		return nil, err
	}

	sessionStore := session.NewPostgresStore(pool)
	candidateStore := candidate.NewPostgresStore(pool)
	domainStore := domainregistry.NewPostgresStore(pool)
	querygenSessionStore := querygensession.NewPostgresStore(pool)
	usageStore := usage.NewPostgresStore(pool)
	enhancementStore := enhancement.NewPostgresStore(pool)
	searchQueryStore := searchquery.NewPostgresStore(pool)

	blacklist := cache.New(domainStore, redisClient.Client)

	registry := adapter.NewRegistry()
	if err := registerEngines(registry, cfg, usageStore); err != nil {
		pool.Close()
		redisClient.Close()
		producer.Close()
		return nil, err
	}

	var llmClient querygen.LLMClient
	if cfg.LLM.BaseURL != "" {
		llmClient = querygen.NewHTTPClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature, &http.Client{Timeout: cfg.LLM.Timeout})
	}
	generator := querygen.New(llmClient, querygenSessionStore)

	pipe := pipeline.New(pipeline.Config{
		DomainStore:    domainStore,
		CandidateStore: candidateStore,
		Blacklist:      blacklist,
		Threshold:      cfg.ConfidenceThreshold,
		Metrics:        met,
		Logger:         log,
	})

	orch := orchestrator.New(orchestrator.Config{
		Producer:       producer,
		Sessions:       sessionStore,
		Domains:        domainStore,
		Candidates:     candidateStore,
		Blacklist:      blacklist,
		Registry:       registry,
		Generator:      generator,
		Pipeline:       pipe,
		Metrics:        met,
		Logger:         log,
		SoftDeadline:   cfg.SessionSoftDeadline,
		RequestTimeout: 20 * time.Second,
	})

	return &Runtime{
		Config:       cfg,
		Logger:       log,
		Metrics:      met,
		Pool:         pool,
		Redis:        redisClient,
		Producer:     producer,
		Sessions:      sessionStore,
		Candidates:    candidateStore,
		Domains:       domainStore,
		QueryGen:      querygenSessionStore,
		Usage:         usageStore,
		Enhancements:  enhancementStore,
		SearchQueries: searchQueryStore,
		Blacklist:    blacklist,
		Registry:     registry,
		Generator:    generator,
		Pipeline:     pipe,
		Orchestrator: orch,
	}, nil
}

// Close releases every connection-backed collaborator.
func (r *Runtime) Close() {
	r.Producer.Close()
	r.Redis.Close()
	r.Pool.Close()
}

// NewStageConsumers builds the three kafka.Consumer instances the
// orchestrator's stage handlers run behind, one consumer group per stage.
func NewStageConsumers(cfg config.Config) (orchestrator.StageConsumers, error) {
	searchRequests, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.BusBrokers,
		GroupID: "fundingdiscovery-search-execution",
		Topics:  []string{kafka.TopicSearchRequests},
		Workers: cfg.ConsumerWorkersPerTopic,
	})
	if err != nil {
		return orchestrator.StageConsumers{}, err
	}

	searchResultsRaw, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.BusBrokers,
		GroupID: "fundingdiscovery-result-validation",
		Topics:  []string{kafka.TopicSearchResultsRaw},
		Workers: cfg.ConsumerWorkersPerTopic,
	})
	if err != nil {
		return orchestrator.StageConsumers{}, err
	}

	searchResultsValid, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.BusBrokers,
		GroupID: "fundingdiscovery-result-scoring",
		Topics:  []string{kafka.TopicSearchResultsValidated},
		Workers: cfg.ConsumerWorkersPerTopic,
	})
	if err != nil {
		return orchestrator.StageConsumers{}, err
	}

	return orchestrator.StageConsumers{
		SearchRequests:     searchRequests,
		SearchResultsRaw:   searchResultsRaw,
		SearchResultsValid: searchResultsValid,
	}, nil
}

// CloseStageConsumers releases every non-nil consumer in c.
func CloseStageConsumers(c orchestrator.StageConsumers) {
	if c.SearchRequests != nil {
		c.SearchRequests.Close()
	}
	if c.SearchResultsRaw != nil {
		c.SearchResultsRaw.Close()
	}
	if c.SearchResultsValid != nil {
		c.SearchResultsValid.Close()
	}
}

// registerEngines builds one adapter.Provider per enabled engine in
// cfg.Engines: Keyword A and Keyword B are both KeywordEngine instances
// differing only in base URL/response parser, meta_search is self-hosted
// and unauthenticated, ai_answer is bearer-token authenticated. Each is
// wrapped in the full rateLimit(retry(circuitBreak(timeout(call))))
// middleware stack.
func registerEngines(registry *adapter.Registry, cfg config.Config, usageStore usage.Store) error {
	httpClient := &http.Client{}

	for name, ec := range cfg.Engines {
		if !ec.Enabled {
			continue
		}
		breaker := circuit.New(name,
			circuit.WithFailureThreshold(cfg.CircuitBreaker.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.CircuitBreaker.SuccessThreshold),
			circuit.WithCooldown(cfg.CircuitBreaker.Cooldown),
		)

		var p adapter.Provider
		switch name {
		case "keyword_a":
			p = adapter.NewKeywordEngine(name, ec.BaseURL, ec.APIKey, httpClient, breaker, adapter.KeywordAParser)
		case "keyword_b":
			p = adapter.NewKeywordEngine(name, ec.BaseURL, ec.APIKey, httpClient, breaker, adapter.KeywordBParser)
		case "meta_search":
			p = adapter.NewMetaSearch(name, ec.BaseURL, httpClient, breaker)
		case "ai_answer":
			p = adapter.NewAIAnswer(name, ec.BaseURL, ec.APIKey, httpClient, breaker)
		default:
			continue
		}

		wrapped := wrapProvider(p, adapter.MiddlewareConfig{
			Engine:     name,
			Timeout:    ec.Timeout,
			MaxRetries: ec.MaxRetries,
			RateLimit:  ec.RateLimit,
			RateWindow: ec.RateWindow,
			Breaker:    breaker,
			UsageStore: usageStore,
		})
		if err := registry.Register(wrapped); err != nil {
			return err
		}
	}
	return nil
}

// wrapProvider composes adapter.Wrap's middleware stack around p.Search
// while preserving p's own Engine/Capabilities/HealthCheck identity.
func wrapProvider(p adapter.Provider, mwCfg adapter.MiddlewareConfig) adapter.Provider {
	call := adapter.Wrap(mwCfg, func(ctx context.Context, query string, maxResults int) ([]adapter.SearchResult, error) {
		return p.Search(ctx, query, maxResults, "")
	})
	return &wrappedProvider{Provider: p, call: call}
}

type wrappedProvider struct {
	adapter.Provider
	call adapter.Call
}

func (w *wrappedProvider) Search(ctx context.Context, query string, maxResults int, sessionID string) ([]adapter.SearchResult, error) {
	results, err := w.call(ctx, query, maxResults)
	for i := range results {
		results[i].SessionID = sessionID
	}
	return results, err
}
