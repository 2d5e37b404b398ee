//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer is a running Postgres instance with the core's schema
// applied and a connected pgx pool.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *pgxpool.Pool
}

// schema is the core's persistent state layout, expressed as test DDL.
// Confidence-bearing columns store integer hundredths (scale 2) with
// range checks; production migrations live outside this repo.
const schema = `
CREATE TABLE IF NOT EXISTS discovery_session (
	id UUID PRIMARY KEY,
	type VARCHAR(16) NOT NULL CHECK (type IN ('MANUAL','SCHEDULED','RETRY')),
	status VARCHAR(16) NOT NULL CHECK (status IN ('RUNNING','COMPLETED','FAILED','CANCELLED')),
	criteria JSONB NOT NULL DEFAULT '{}'::jsonb,
	prompt TEXT NOT NULL DEFAULT '',
	model_id TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	counters JSONB NOT NULL DEFAULT '{}'::jsonb,
	per_engine JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE TABLE IF NOT EXISTS domain (
	id UUID PRIMARY KEY,
	host TEXT NOT NULL UNIQUE,
	status VARCHAR(32) NOT NULL DEFAULT 'DISCOVERED' CHECK (status IN
		('DISCOVERED','PROCESSING','PROCESSED_HIGH_QUALITY','PROCESSED_LOW_QUALITY',
		 'NO_FUNDS_THIS_YEAR','PROCESSING_FAILED','BLACKLISTED')),
	best_confidence INTEGER NOT NULL DEFAULT 0 CHECK (best_confidence BETWEEN 0 AND 100),
	high_quality_count INTEGER NOT NULL DEFAULT 0,
	low_quality_count INTEGER NOT NULL DEFAULT 0,
	discovered_at TIMESTAMPTZ NOT NULL,
	discovery_session_id UUID,
	last_processed_at TIMESTAMPTZ,
	processing_count INTEGER NOT NULL DEFAULT 0,
	failure_count INTEGER NOT NULL DEFAULT 0,
	retry_after TIMESTAMPTZ,
	blacklist_actor TEXT,
	blacklist_reason TEXT,
	blacklist_at TIMESTAMPTZ,
	no_funds_year INTEGER NOT NULL DEFAULT 0,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS funding_source_candidate (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL,
	domain_id UUID NOT NULL,
	status VARCHAR(32) NOT NULL CHECK (status IN
		('PENDING_CRAWL','SKIPPED_LOW_CONFIDENCE','IN_REVIEW','APPROVED','REJECTED')),
	confidence INTEGER NOT NULL CHECK (confidence BETWEEN 0 AND 100),
	source_url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	snippet TEXT NOT NULL DEFAULT '',
	org_name TEXT NOT NULL DEFAULT '',
	program_name TEXT NOT NULL DEFAULT '',
	engine TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, domain_id)
);

CREATE TABLE IF NOT EXISTS metadata_judgment (
	candidate_id UUID NOT NULL,
	funding_keywords_score INTEGER NOT NULL DEFAULT 0,
	domain_credibility_score INTEGER NOT NULL DEFAULT 0,
	geographic_relevance_score INTEGER NOT NULL DEFAULT 0,
	organization_type_score INTEGER NOT NULL DEFAULT 0,
	aggregate INTEGER NOT NULL CHECK (aggregate BETWEEN 0 AND 100),
	keywords_found TEXT[] NOT NULL DEFAULT '{}',
	engine TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS enhancement_record (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL,
	actor TEXT NOT NULL DEFAULT '',
	type VARCHAR(16) NOT NULL CHECK (type IN ('AI_SUGGESTED','MANUAL','HUMAN_MODIFIED')),
	field_name TEXT NOT NULL,
	original_value TEXT NOT NULL DEFAULT '',
	suggested_value TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	model_id TEXT NOT NULL DEFAULT '',
	confidence INTEGER CHECK (confidence BETWEEN 0 AND 100),
	approved BOOLEAN,
	time_spent_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS provider_api_usage (
	provider TEXT NOT NULL,
	query TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	success BOOLEAN NOT NULL,
	response_time_ms BIGINT NOT NULL DEFAULT 0,
	timestamp TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS provider_api_usage_window
	ON provider_api_usage (provider, timestamp);

CREATE TABLE IF NOT EXISTS search_query (
	id UUID PRIMARY KEY,
	text TEXT NOT NULL,
	day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	engines TEXT[] NOT NULL DEFAULT '{}',
	tags TEXT[] NOT NULL DEFAULT '{}',
	enabled BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS query_generation_sessions (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	queries_requested INTEGER NOT NULL DEFAULT 0,
	queries_generated INTEGER NOT NULL DEFAULT 0,
	queries_approved INTEGER NOT NULL DEFAULT 0,
	queries_rejected INTEGER NOT NULL DEFAULT 0,
	rejection_reasons JSONB NOT NULL DEFAULT '[]'::jsonb,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	fallback_used BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgresContainer starts a Postgres container, applies the schema,
// and returns a connected pool. Terminated via t.Cleanup.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fundingdiscovery_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool}
}
