package querygensession

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

// PostgresStore persists rows in `query_generation_sessions`.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, row fd.QueryGenerationSession) (fd.QueryGenerationSession, error) {
	if row.ID == (pid.QueryGenSessionID{}) {
		row.ID = pid.NewQueryGenSessionID()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	reasons, err := json.Marshal(row.RejectionReasons)
	if err != nil {
		return fd.QueryGenerationSession{}, fderrors.Wrap(fderrors.CodeInternal, "marshal rejection reasons", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO query_generation_sessions
			(id, session_id, model, queries_requested, queries_generated, queries_approved,
			 queries_rejected, rejection_reasons, duration_ms, fallback_used, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, row.ID.String(), row.SessionID.String(), row.Model, row.QueriesRequested, row.QueriesGenerated,
		row.QueriesApproved, row.QueriesRejected, reasons, row.Duration.Milliseconds(), row.FallbackUsed, row.CreatedAt)
	if err != nil {
		return fd.QueryGenerationSession{}, fderrors.Wrap(fderrors.CodeInternal, "insert query generation session", err)
	}
	return row, nil
}

func (s *PostgresStore) Get(ctx context.Context, id pid.QueryGenSessionID) (fd.QueryGenerationSession, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, model, queries_requested, queries_generated, queries_approved,
		       queries_rejected, rejection_reasons, duration_ms, fallback_used, created_at
		FROM query_generation_sessions WHERE id = $1
	`, id.String())
	return scanRow(row)
}

func scanRow(row pgx.Row) (fd.QueryGenerationSession, error) {
	var out fd.QueryGenerationSession
	var idStr, sessionIDStr string
	var reasonsRaw []byte
	var durationMS int64
	err := row.Scan(&idStr, &sessionIDStr, &out.Model, &out.QueriesRequested, &out.QueriesGenerated,
		&out.QueriesApproved, &out.QueriesRejected, &reasonsRaw, &durationMS, &out.FallbackUsed, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fd.QueryGenerationSession{}, ErrNotFound
		}
		return fd.QueryGenerationSession{}, fderrors.Wrap(fderrors.CodeInternal, "scan query generation session", err)
	}
	if parsed, perr := pid.ParseQueryGenSessionID(idStr); perr == nil {
		out.ID = parsed
	}
	if parsed, perr := pid.ParseSessionID(sessionIDStr); perr == nil {
		out.SessionID = parsed
	}
	_ = json.Unmarshal(reasonsRaw, &out.RejectionReasons)
	out.Duration = time.Duration(durationMS) * time.Millisecond
	return out, nil
}

func (s *PostgresStore) ListForSession(ctx context.Context, sessionID pid.SessionID) ([]fd.QueryGenerationSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, model, queries_requested, queries_generated, queries_approved,
		       queries_rejected, rejection_reasons, duration_ms, fallback_used, created_at
		FROM query_generation_sessions WHERE session_id = $1 ORDER BY created_at
	`, sessionID.String())
	if err != nil {
		return nil, fderrors.Wrap(fderrors.CodeInternal, "list query generation sessions", err)
	}
	defer rows.Close()

	var out []fd.QueryGenerationSession
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
