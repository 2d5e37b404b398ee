package enhancement

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// PostgresStore persists enhancement records in `enhancement_record`,
// append-only: rows are never updated or deleted.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, r fd.EnhancementRecord) (fd.EnhancementRecord, error) {
	if r.ID == (pid.EnhancementID{}) {
		r.ID = pid.NewEnhancementID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fd.EnhancementRecord{}, fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	var head time.Time
	err = tx.QueryRow(ctx, `
		SELECT created_at FROM enhancement_record WHERE candidate_id = $1 ORDER BY created_at DESC LIMIT 1
	`, r.CandidateID.String()).Scan(&head)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fd.EnhancementRecord{}, fderrors.Wrap(fderrors.CodeInternal, "read log head", err)
	}
	if !head.IsZero() && r.CreatedAt.Before(head.Add(-clockSkewTolerance)) {
		return fd.EnhancementRecord{}, ErrBackdated
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO enhancement_record
			(id, candidate_id, actor, type, field_name, original_value, suggested_value,
			 notes, model_id, confidence, approved, time_spent_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, r.ID.String(), r.CandidateID.String(), r.Actor, r.Type, r.FieldName, r.OriginalValue,
		r.SuggestedValue, r.Notes, r.ModelID, r.Confidence, r.Approved, r.TimeSpent.Milliseconds(), r.CreatedAt)
	if err != nil {
		return fd.EnhancementRecord{}, fderrors.Wrap(fderrors.CodeInternal, "append enhancement record", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fd.EnhancementRecord{}, fderrors.Wrap(fderrors.CodeInternal, "commit", err)
	}
	return r, nil
}

func (s *PostgresStore) ListForCandidate(ctx context.Context, candidateID pid.CandidateID) ([]fd.EnhancementRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, candidate_id, actor, type, field_name, original_value, suggested_value,
			notes, model_id, confidence, approved, time_spent_ms, created_at
		FROM enhancement_record WHERE candidate_id = $1 ORDER BY created_at ASC
	`, candidateID.String())
	if err != nil {
		return nil, fderrors.Wrap(fderrors.CodeInternal, "list enhancement records", err)
	}
	defer rows.Close()

	var out []fd.EnhancementRecord
	for rows.Next() {
		var r fd.EnhancementRecord
		var id, candID string
		var timeSpentMs int64
		if err := rows.Scan(&id, &candID, &r.Actor, &r.Type, &r.FieldName, &r.OriginalValue,
			&r.SuggestedValue, &r.Notes, &r.ModelID, &r.Confidence, &r.Approved, &timeSpentMs, &r.CreatedAt); err != nil {
			return nil, fderrors.Wrap(fderrors.CodeInternal, "scan enhancement record", err)
		}
		if parsed, perr := pid.ParseEnhancementID(id); perr == nil {
			r.ID = parsed
		}
		if parsed, perr := pid.ParseCandidateID(candID); perr == nil {
			r.CandidateID = parsed
		}
		r.TimeSpent = time.Duration(timeSpentMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
