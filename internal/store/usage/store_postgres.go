package usage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/pkg/fderrors"
)

// PostgresStore persists usage rows in `provider_api_usage`, indexed on
// (provider, timestamp) to keep the rolling-window count cheap.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Record(ctx context.Context, u fd.ProviderAPIUsage) error {
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO provider_api_usage (provider, query, result_count, success, response_time_ms, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, u.Provider, u.Query, u.ResultCount, u.Success, u.ResponseTime.Milliseconds(), u.Timestamp)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "record provider usage", err)
	}
	return nil
}

func (s *PostgresStore) CountSince(ctx context.Context, provider string, cutoff time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM provider_api_usage WHERE provider = $1 AND timestamp > $2
	`, provider, cutoff).Scan(&count)
	if err != nil {
		return 0, fderrors.Wrap(fderrors.CodeInternal, "count provider usage", err)
	}
	return count, nil
}

func (s *PostgresStore) RecentFailureRate(ctx context.Context, provider string, cutoff time.Time) (float64, error) {
	var total, failed int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT success)
		FROM provider_api_usage WHERE provider = $1 AND timestamp > $2
	`, provider, cutoff).Scan(&total, &failed)
	if err != nil {
		return 0, fderrors.Wrap(fderrors.CodeInternal, "compute failure rate", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(failed) / float64(total), nil
}
