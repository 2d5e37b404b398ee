package searchquery

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

// PostgresStore persists named queries in `search_query`, with engines and
// tags stored as text arrays.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, q fd.SearchQuery) (fd.SearchQuery, error) {
	if q.ID == (pid.SearchQueryID{}) {
		q.ID = pid.NewSearchQueryID()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_query (id, text, day_of_week, engines, tags, enabled)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, q.ID.String(), q.Text, int(q.DayOfWeek), q.Engines, q.Tags, q.Enabled)
	if err != nil {
		return fd.SearchQuery{}, fderrors.Wrap(fderrors.CodeInternal, "insert search query", err)
	}
	return q, nil
}

func scanQuery(row pgx.Row) (fd.SearchQuery, error) {
	var q fd.SearchQuery
	var id string
	var dow int
	err := row.Scan(&id, &q.Text, &dow, &q.Engines, &q.Tags, &q.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fd.SearchQuery{}, ErrNotFound
		}
		return fd.SearchQuery{}, fderrors.Wrap(fderrors.CodeInternal, "scan search query row", err)
	}
	if parsed, perr := pid.ParseSearchQueryID(id); perr == nil {
		q.ID = parsed
	}
	q.DayOfWeek = time.Weekday(dow)
	return q, nil
}

func (s *PostgresStore) Get(ctx context.Context, id pid.SearchQueryID) (fd.SearchQuery, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, text, day_of_week, engines, tags, enabled FROM search_query WHERE id = $1
	`, id.String())
	return scanQuery(row)
}

func (s *PostgresStore) Update(ctx context.Context, q fd.SearchQuery) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE search_query SET text = $2, day_of_week = $3, engines = $4, tags = $5, enabled = $6
		WHERE id = $1
	`, q.ID.String(), q.Text, int(q.DayOfWeek), q.Engines, q.Tags, q.Enabled)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "update search query", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id pid.SearchQueryID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM search_query WHERE id = $1`, id.String())
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "delete search query", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DueForDay(ctx context.Context, day int) ([]fd.SearchQuery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, day_of_week, engines, tags, enabled
		FROM search_query WHERE enabled AND day_of_week = $1
	`, day)
	if err != nil {
		return nil, fderrors.Wrap(fderrors.CodeInternal, "query due search queries", err)
	}
	defer rows.Close()

	var out []fd.SearchQuery
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context) ([]fd.SearchQuery, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, text, day_of_week, engines, tags, enabled FROM search_query`)
	if err != nil {
		return nil, fderrors.Wrap(fderrors.CodeInternal, "list search queries", err)
	}
	defer rows.Close()

	var out []fd.SearchQuery
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
