package domainregistry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// PostgresStore persists the domain registry in the `domain` table.
// Queries are hand-written against pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) RegisterOrGet(ctx context.Context, host string, sessionID pid.SessionID) (fd.Domain, error) {
	id := pid.NewDomainID()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO domain (id, host, status, discovered_at, discovery_session_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (host) DO NOTHING
		RETURNING id, host, status, best_confidence, high_quality_count, low_quality_count,
			discovered_at, discovery_session_id, last_processed_at, processing_count,
			failure_count, retry_after, blacklist_actor, blacklist_reason, blacklist_at,
			no_funds_year, notes
	`, id, host, fd.DomainStatusDiscovered, time.Now(), sessionID.String())

	d, err := scanDomain(row)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fd.Domain{}, err
	}
	// Insertion lost the uniqueness race (or was a no-op): re-read the
	// existing row.
	return s.Get(ctx, host)
}

func (s *PostgresStore) Get(ctx context.Context, host string) (fd.Domain, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, host, status, best_confidence, high_quality_count, low_quality_count,
			discovered_at, discovery_session_id, last_processed_at, processing_count,
			failure_count, retry_after, blacklist_actor, blacklist_reason, blacklist_at,
			no_funds_year, notes
		FROM domain WHERE host = $1
	`, host)
	return scanDomain(row)
}

func scanDomain(row pgx.Row) (fd.Domain, error) {
	var d fd.Domain
	var domainID string
	var sessionID, blacklistActor, blacklistReason, notes *string
	var blacklistAt, lastProcessedAt, retryAfter *time.Time

	err := row.Scan(&domainID, &d.Host, &d.Status, &d.BestConfidence, &d.HighQualityCount,
		&d.LowQualityCount, &d.DiscoveredAt, &sessionID, &lastProcessedAt, &d.ProcessingCount,
		&d.FailureCount, &retryAfter, &blacklistActor, &blacklistReason, &blacklistAt,
		&d.NoFundsYear, &notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fd.Domain{}, ErrNotFound
		}
		return fd.Domain{}, fderrors.Wrap(fderrors.CodeInternal, "scan domain row", err)
	}

	if parsed, perr := pid.ParseDomainID(domainID); perr == nil {
		d.ID = parsed
	}
	if sessionID != nil {
		if parsed, perr := pid.ParseSessionID(*sessionID); perr == nil {
			d.DiscoverySession = parsed
		}
	}
	d.LastProcessedAt = lastProcessedAt
	d.RetryAfter = retryAfter
	if notes != nil {
		d.Notes = *notes
	}
	if blacklistActor != nil && blacklistAt != nil {
		reason := ""
		if blacklistReason != nil {
			reason = *blacklistReason
		}
		d.Blacklist = &fd.Blacklist{Actor: *blacklistActor, Reason: reason, At: *blacklistAt}
	}
	return d, nil
}

func (s *PostgresStore) ShouldProcess(ctx context.Context, host string) (bool, error) {
	d, err := s.Get(ctx, host)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return d.ShouldProcess(time.Now()), nil
}

func (s *PostgresStore) UpdateQuality(ctx context.Context, host string, confidence int64, isHighQuality bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	var highCount, lowCount int
	err = tx.QueryRow(ctx, `SELECT high_quality_count, low_quality_count FROM domain WHERE host = $1 FOR UPDATE`, host).
		Scan(&highCount, &lowCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fderrors.Wrap(fderrors.CodeInternal, "lock domain row", err)
	}

	status := fd.DomainStatusProcessing
	if isHighQuality {
		highCount++
		status = fd.DomainStatusProcessedHighQuality
	} else {
		lowCount++
		if highCount == 0 && lowCount >= 3 {
			status = fd.DomainStatusProcessedLowQuality
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE domain SET
			best_confidence = GREATEST(best_confidence, $2),
			high_quality_count = $3,
			low_quality_count = $4,
			status = CASE WHEN $5 = '' THEN status ELSE $5::text END,
			last_processed_at = $6
		WHERE host = $1
	`, host, confidence, highCount, lowCount, statusOrEmpty(status), time.Now())
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "update domain quality", err)
	}
	return tx.Commit(ctx)
}

// statusOrEmpty avoids overwriting status with PROCESSING when neither
// terminal condition fired; status stays unchanged in that case.
func statusOrEmpty(s fd.DomainStatus) string {
	if s == fd.DomainStatusProcessing {
		return ""
	}
	return string(s)
}

func (s *PostgresStore) Blacklist(ctx context.Context, host, reason, actor string) error {
	id := pid.NewDomainID()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO domain (id, host, status, discovered_at, blacklist_actor, blacklist_reason, blacklist_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (host) DO UPDATE SET
			status = EXCLUDED.status,
			blacklist_actor = EXCLUDED.blacklist_actor,
			blacklist_reason = EXCLUDED.blacklist_reason,
			blacklist_at = EXCLUDED.blacklist_at
	`, id, host, fd.DomainStatusBlacklisted, time.Now(), actor, reason, time.Now())
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "blacklist domain", err)
	}
	return nil
}

func (s *PostgresStore) Unblacklist(ctx context.Context, host string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE domain SET status = $2, blacklist_actor = NULL, blacklist_reason = NULL, blacklist_at = NULL
		WHERE host = $1
	`, host, fd.DomainStatusDiscovered)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "unblacklist domain", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkNoFunds(ctx context.Context, host string, year int, notes string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE domain SET status = $2, no_funds_year = $3, notes = $4 WHERE host = $1
	`, host, fd.DomainStatusNoFundsThisYear, year, notes)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "mark no funds", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RecordFailure(ctx context.Context, host string, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	id := pid.NewDomainID()
	var failureCount int
	err = tx.QueryRow(ctx, `
		INSERT INTO domain (id, host, status, discovered_at, failure_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (host) DO UPDATE SET failure_count = domain.failure_count + 1
		RETURNING failure_count
	`, id, host, fd.DomainStatusProcessingFailed, time.Now()).Scan(&failureCount)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "record failure", err)
	}

	retryAfter := time.Now().Add(fd.BackoffDuration(failureCount))
	_, err = tx.Exec(ctx, `
		UPDATE domain SET status = $2, retry_after = $3, notes = $4 WHERE host = $1
	`, host, fd.DomainStatusProcessingFailed, retryAfter, reason)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "set retry_after", err)
	}

	return tx.Commit(ctx)
}
