package candidate

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// PostgresStore persists candidates in the `funding_source_candidate`
// table and their judgments in `metadata_judgment`, hand-written SQL over
// pgx like the rest of this store family.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, c fd.FundingSourceCandidate) (fd.FundingSourceCandidate, error) {
	if c.ID == (pid.CandidateID{}) {
		c.ID = pid.NewCandidateID()
	}
	now := time.Now()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO funding_source_candidate
			(id, session_id, domain_id, status, confidence, source_url, title, snippet,
			 org_name, program_name, engine, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
		ON CONFLICT (session_id, domain_id) DO NOTHING
		RETURNING id, session_id, domain_id, status, confidence, source_url, title, snippet,
			org_name, program_name, engine, created_at, updated_at
	`, c.ID, c.SessionID.String(), c.DomainID.String(), c.Status, c.Confidence, c.SourceURL,
		c.Metadata.Title, c.Metadata.Snippet, c.Metadata.OrgName, c.Metadata.ProgramName, c.Engine, now)

	saved, err := scanCandidate(row)
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fd.FundingSourceCandidate{}, err
	}
	return s.getBySessionAndDomain(ctx, c.SessionID, c.DomainID)
}

func scanCandidate(row pgx.Row) (fd.FundingSourceCandidate, error) {
	var c fd.FundingSourceCandidate
	var id, sessionID, domainID string
	err := row.Scan(&id, &sessionID, &domainID, &c.Status, &c.Confidence, &c.SourceURL,
		&c.Metadata.Title, &c.Metadata.Snippet, &c.Metadata.OrgName, &c.Metadata.ProgramName,
		&c.Engine, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fd.FundingSourceCandidate{}, err
		}
		return fd.FundingSourceCandidate{}, fderrors.Wrap(fderrors.CodeInternal, "scan candidate row", err)
	}
	if parsed, perr := pid.ParseCandidateID(id); perr == nil {
		c.ID = parsed
	}
	if parsed, perr := pid.ParseSessionID(sessionID); perr == nil {
		c.SessionID = parsed
	}
	if parsed, perr := pid.ParseDomainID(domainID); perr == nil {
		c.DomainID = parsed
	}
	return c, nil
}

func (s *PostgresStore) Get(ctx context.Context, id pid.CandidateID) (fd.FundingSourceCandidate, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, domain_id, status, confidence, source_url, title, snippet,
			org_name, program_name, engine, created_at, updated_at
		FROM funding_source_candidate WHERE id = $1
	`, id.String())
	c, err := scanCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return fd.FundingSourceCandidate{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) getBySessionAndDomain(ctx context.Context, sessionID pid.SessionID, domainID pid.DomainID) (fd.FundingSourceCandidate, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, domain_id, status, confidence, source_url, title, snippet,
			org_name, program_name, engine, created_at, updated_at
		FROM funding_source_candidate WHERE session_id = $1 AND domain_id = $2
	`, sessionID.String(), domainID.String())
	c, err := scanCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return fd.FundingSourceCandidate{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) ExistsForSessionAndDomain(ctx context.Context, sessionID pid.SessionID, domainID pid.DomainID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM funding_source_candidate WHERE session_id = $1 AND domain_id = $2)
	`, sessionID.String(), domainID.String()).Scan(&exists)
	if err != nil {
		return false, fderrors.Wrap(fderrors.CodeInternal, "check candidate existence", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]fd.FundingSourceCandidate, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argn := 0
	next := func(v any) string {
		argn++
		args = append(args, v)
		return "$" + strconv.Itoa(argn)
	}

	if filter.Status != nil {
		where += " AND status = " + next(*filter.Status)
	}
	if filter.MinConfidence != nil {
		where += " AND confidence >= " + next(*filter.MinConfidence)
	}
	if filter.SearchEngine != nil {
		where += " AND engine = " + next(*filter.SearchEngine)
	}
	if filter.StartDate != nil {
		where += " AND created_at >= to_timestamp(" + next(*filter.StartDate) + ")"
	}
	if filter.EndDate != nil {
		where += " AND created_at <= to_timestamp(" + next(*filter.EndDate) + ")"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM funding_source_candidate " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fderrors.Wrap(fderrors.CodeInternal, "count candidates", err)
	}

	dir := "DESC"
	if filter.SortDirection == "asc" {
		dir = "ASC"
	}
	size := filter.Size
	if size <= 0 {
		size = 20
	}
	limitArg := next(size)
	offsetArg := next(filter.Page * size)

	query := `
		SELECT id, session_id, domain_id, status, confidence, source_url, title, snippet,
			org_name, program_name, engine, created_at, updated_at
		FROM funding_source_candidate ` + where + `
		ORDER BY created_at ` + dir + `
		LIMIT ` + limitArg + ` OFFSET ` + offsetArg

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fderrors.Wrap(fderrors.CodeInternal, "list candidates", err)
	}
	defer rows.Close()

	var results []fd.FundingSourceCandidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, c)
	}
	return results, total, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id pid.CandidateID, status fd.CandidateStatus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	var current fd.CandidateStatus
	err = tx.QueryRow(ctx, `SELECT status FROM funding_source_candidate WHERE id = $1 FOR UPDATE`, id.String()).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fderrors.Wrap(fderrors.CodeInternal, "lock candidate row", err)
	}
	if current == status {
		return ErrAlreadyInState
	}
	if !CanTransition(current, status) {
		return ErrIllegalTransition
	}

	_, err = tx.Exec(ctx, `UPDATE funding_source_candidate SET status = $2, updated_at = $3 WHERE id = $1`,
		id.String(), status, time.Now())
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "update candidate status", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) SaveJudgment(ctx context.Context, j fd.MetadataJudgment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO metadata_judgment
			(candidate_id, funding_keywords_score, domain_credibility_score,
			 geographic_relevance_score, organization_type_score, aggregate,
			 keywords_found, engine, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, j.CandidateID.String(), j.FundingKeywordsScore, j.DomainCredibilityScore,
		j.GeographicRelevanceScore, j.OrganizationTypeScore, j.Aggregate,
		j.KeywordsFound, j.Engine, time.Now())
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "save metadata judgment", err)
	}
	return nil
}

