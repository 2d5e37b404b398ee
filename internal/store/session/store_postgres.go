package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// PostgresStore persists sessions in the `discovery_session` table.
// SearchCriteria and per-engine statistics are stored as jsonb, since they
// are read/written wholesale and never queried by sub-field.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, sess fd.DiscoverySession) (fd.DiscoverySession, error) {
	if sess.ID == (pid.SessionID{}) {
		sess.ID = pid.NewSessionID()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	if sess.Status == "" {
		sess.Status = fd.SessionStatusRunning
	}
	criteria, err := json.Marshal(sess.Criteria)
	if err != nil {
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "marshal search criteria", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO discovery_session
			(id, type, status, criteria, prompt, model_id, started_at, counters, per_engine)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'{}'::jsonb,'[]'::jsonb)
	`, sess.ID.String(), sess.Type, sess.Status, criteria, sess.Prompt, sess.ModelID, sess.StartedAt)
	if err != nil {
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "insert session", err)
	}
	return sess, nil
}

func (s *PostgresStore) Get(ctx context.Context, id pid.SessionID) (fd.DiscoverySession, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, type, status, criteria, prompt, model_id, started_at, completed_at, counters, per_engine
		FROM discovery_session WHERE id = $1
	`, id.String())
	return scanSession(row)
}

func scanSession(row pgx.Row) (fd.DiscoverySession, error) {
	var sess fd.DiscoverySession
	var idStr string
	var criteriaRaw, countersRaw, perEngineRaw []byte
	err := row.Scan(&idStr, &sess.Type, &sess.Status, &criteriaRaw, &sess.Prompt, &sess.ModelID,
		&sess.StartedAt, &sess.CompletedAt, &countersRaw, &perEngineRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fd.DiscoverySession{}, ErrNotFound
		}
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "scan session row", err)
	}
	if parsed, perr := pid.ParseSessionID(idStr); perr == nil {
		sess.ID = parsed
	}
	_ = json.Unmarshal(criteriaRaw, &sess.Criteria)
	_ = json.Unmarshal(countersRaw, &sess.Counters)
	_ = json.Unmarshal(perEngineRaw, &sess.PerEngine)
	return sess, nil
}

func (s *PostgresStore) IncrementCounters(ctx context.Context, id pid.SessionID, delta fd.SessionCounters) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	var status fd.SessionStatus
	var countersRaw []byte
	err = tx.QueryRow(ctx, `SELECT status, counters FROM discovery_session WHERE id = $1 FOR UPDATE`, id.String()).
		Scan(&status, &countersRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fderrors.Wrap(fderrors.CodeInternal, "lock session row", err)
	}
	if status != fd.SessionStatusRunning {
		return ErrTerminal
	}

	var counters fd.SessionCounters
	_ = json.Unmarshal(countersRaw, &counters)
	counters.ResultsFound += delta.ResultsFound
	counters.CandidatesCreated += delta.CandidatesCreated
	counters.DuplicatesSkipped += delta.DuplicatesSkipped
	counters.SpamFiltered += delta.SpamFiltered
	counters.BlacklistedSkipped += delta.BlacklistedSkipped
	counters.InvalidURLsSkipped += delta.InvalidURLsSkipped
	counters.HighConfidence += delta.HighConfidence
	counters.LowConfidence += delta.LowConfidence

	encoded, err := json.Marshal(counters)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "marshal counters", err)
	}
	_, err = tx.Exec(ctx, `UPDATE discovery_session SET counters = $2 WHERE id = $1`, id.String(), encoded)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "update counters", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) RecordEngineStats(ctx context.Context, id pid.SessionID, stats fd.EngineStatistics) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	var status fd.SessionStatus
	var perEngineRaw []byte
	err = tx.QueryRow(ctx, `SELECT status, per_engine FROM discovery_session WHERE id = $1 FOR UPDATE`, id.String()).
		Scan(&status, &perEngineRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fderrors.Wrap(fderrors.CodeInternal, "lock session row", err)
	}
	if status != fd.SessionStatusRunning {
		return ErrTerminal
	}

	var perEngine []fd.EngineStatistics
	_ = json.Unmarshal(perEngineRaw, &perEngine)
	merged := false
	for i, existing := range perEngine {
		if existing.Engine == stats.Engine {
			perEngine[i].QueriesIssued += stats.QueriesIssued
			perEngine[i].ResultsFound += stats.ResultsFound
			perEngine[i].Errors += stats.Errors
			merged = true
			break
		}
	}
	if !merged {
		perEngine = append(perEngine, stats)
	}

	encoded, err := json.Marshal(perEngine)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "marshal per-engine stats", err)
	}
	_, err = tx.Exec(ctx, `UPDATE discovery_session SET per_engine = $2 WHERE id = $1`, id.String(), encoded)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "update per-engine stats", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Complete(ctx context.Context, id pid.SessionID, status fd.SessionStatus) (fd.DiscoverySession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	var currentStatus fd.SessionStatus
	err = tx.QueryRow(ctx, `SELECT status FROM discovery_session WHERE id = $1 FOR UPDATE`, id.String()).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fd.DiscoverySession{}, ErrNotFound
		}
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "lock session row", err)
	}

	if currentStatus != fd.SessionStatusRunning {
		if currentStatus == status {
			tx.Rollback(ctx)
			return s.Get(ctx, id)
		}
		return fd.DiscoverySession{}, ErrTerminal
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `UPDATE discovery_session SET status = $2, completed_at = $3 WHERE id = $1`,
		id.String(), status, now)
	if err != nil {
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "complete session", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fd.DiscoverySession{}, fderrors.Wrap(fderrors.CodeInternal, "commit", err)
	}
	return s.Get(ctx, id)
}

func (s *PostgresStore) ListRunning(ctx context.Context) ([]fd.DiscoverySession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, status, criteria, prompt, model_id, started_at, completed_at, counters, per_engine
		FROM discovery_session WHERE status = $1
	`, fd.SessionStatusRunning)
	if err != nil {
		return nil, fderrors.Wrap(fderrors.CodeInternal, "list running sessions", err)
	}
	defer rows.Close()

	var out []fd.DiscoverySession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context, page, size int) ([]fd.DiscoverySession, int, error) {
	if size <= 0 {
		size = 20
	}
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM discovery_session`).Scan(&total); err != nil {
		return nil, 0, fderrors.Wrap(fderrors.CodeInternal, "count sessions", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, type, status, criteria, prompt, model_id, started_at, completed_at, counters, per_engine
		FROM discovery_session ORDER BY started_at DESC LIMIT $1 OFFSET $2
	`, size, page*size)
	if err != nil {
		return nil, 0, fderrors.Wrap(fderrors.CodeInternal, "list sessions", err)
	}
	defer rows.Close()

	var out []fd.DiscoverySession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sess)
	}
	return out, total, rows.Err()
}
