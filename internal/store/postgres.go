package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/make-ready-tech/oppintel/internal/db"
	"github.com/make-ready-tech/oppintel/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS opportunities (
	natural_key           TEXT PRIMARY KEY,
	fields                JSONB NOT NULL,
	sources               JSONB NOT NULL,
	field_sources         JSONB NOT NULL,
	source_data           JSONB NOT NULL,
	source_quality_scores JSONB NOT NULL,
	last_source           TEXT NOT NULL,
	first_seen_at         TIMESTAMPTZ NOT NULL,
	last_updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_opportunities_last_source ON opportunities(last_source);
CREATE INDEX IF NOT EXISTS idx_opportunities_last_updated ON opportunities(last_updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_opportunities_vendor ON opportunities((fields->>'vendor_name'));
CREATE INDEX IF NOT EXISTS idx_opportunities_status ON opportunities((fields->>'status'));

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	scraper      TEXT NOT NULL,
	mode         TEXT,
	status       TEXT NOT NULL DEFAULT 'running',
	summary      JSONB,
	logs         JSONB,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_runs_scraper ON runs(scraper);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const opportunityColumns = `natural_key, fields, sources, field_sources, source_data, source_quality_scores, last_source, first_seen_at, last_updated_at`

// Upsert merges a contribution into the opportunity identified by its
// natural key. The row is locked FOR UPDATE for the duration of the
// transaction, so concurrent upserts against the same key serialize and the
// read-merge-write cycle stays atomic.
func (s *PostgresStore) Upsert(ctx context.Context, c model.Contribution) (model.UpsertOutcome, error) {
	if c.NaturalKey == "" {
		return "", eris.New("postgres: upsert: empty natural key")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "postgres: upsert: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	existing, err := scanOpportunity(tx.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE natural_key = $1 FOR UPDATE`,
		c.NaturalKey,
	))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", eris.Wrapf(err, "postgres: upsert: lock %s", c.NaturalKey)
	}

	merged := Merge(existing, c, time.Now().UTC())

	cols, err := opportunityJSON(merged)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: upsert: encode %s", c.NaturalKey)
	}

	outcome := model.OutcomeUpdated
	if existing == nil {
		outcome = model.OutcomeCreated
		_, err = tx.Exec(ctx,
			`INSERT INTO opportunities (`+opportunityColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			merged.NaturalKey, cols.fields, cols.sources, cols.fieldSources, cols.sourceData, cols.qualityScores,
			merged.LastSource, merged.FirstSeenAt, merged.LastUpdatedAt,
		)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE opportunities SET fields = $2, sources = $3, field_sources = $4, source_data = $5, source_quality_scores = $6, last_source = $7, last_updated_at = $8 WHERE natural_key = $1`,
			merged.NaturalKey, cols.fields, cols.sources, cols.fieldSources, cols.sourceData, cols.qualityScores,
			merged.LastSource, merged.LastUpdatedAt,
		)
	}
	if err != nil {
		return "", eris.Wrapf(err, "postgres: upsert: write %s", c.NaturalKey)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrapf(err, "postgres: upsert: commit %s", c.NaturalKey)
	}
	return outcome, nil
}

func (s *PostgresStore) GetOpportunity(ctx context.Context, naturalKey string) (*model.Opportunity, error) {
	o, err := scanOpportunity(s.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE natural_key = $1`,
		naturalKey,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get opportunity %s", naturalKey)
	}
	return o, nil
}

type opportunityCols struct {
	fields        []byte
	sources       []byte
	fieldSources  []byte
	sourceData    []byte
	qualityScores []byte
}

func opportunityJSON(o *model.Opportunity) (opportunityCols, error) {
	var cols opportunityCols
	var err error
	if cols.fields, err = json.Marshal(o.Fields); err != nil {
		return cols, err
	}
	if cols.sources, err = json.Marshal(o.Sources); err != nil {
		return cols, err
	}
	if cols.fieldSources, err = json.Marshal(o.FieldSources); err != nil {
		return cols, err
	}
	if cols.sourceData, err = json.Marshal(o.SourceData); err != nil {
		return cols, err
	}
	if cols.qualityScores, err = json.Marshal(o.SourceQualityScores); err != nil {
		return cols, err
	}
	return cols, nil
}

func scanOpportunity(row pgx.Row) (*model.Opportunity, error) {
	var o model.Opportunity
	var fields, sources, fieldSources, sourceData, qualityScores []byte

	err := row.Scan(&o.NaturalKey, &fields, &sources, &fieldSources, &sourceData, &qualityScores,
		&o.LastSource, &o.FirstSeenAt, &o.LastUpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fields, &o.Fields); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sources, &o.Sources); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fieldSources, &o.FieldSources); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sourceData, &o.SourceData); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(qualityScores, &o.SourceQualityScores); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, scraper string, mode model.RunMode) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, scraper, mode, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, scraper, string(mode), string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Scraper:   scraper,
		Mode:      mode,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary, logs []string, errMsg string) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}
	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal logs")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, summary = $2, logs = $3, error = $4, completed_at = $5 WHERE id = $6`,
		string(status), summaryJSON, logsJSON, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	r, err := scanRun(s.pool.QueryRow(ctx,
		`SELECT id, scraper, mode, status, summary, logs, error, started_at, completed_at FROM runs WHERE id = $1`,
		runID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, scraper, mode, status, summary, logs, error, started_at, completed_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Scraper != "" {
		query += fmt.Sprintf(` AND scraper = $%d`, argIdx)
		args = append(args, filter.Scraper)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var mode *string
	var summaryJSON, logsJSON []byte
	var errMsg *string

	err := row.Scan(&r.ID, &r.Scraper, &mode, &r.Status, &summaryJSON, &logsJSON, &errMsg, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}

	if mode != nil {
		r.Mode = model.RunMode(*mode)
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	if len(summaryJSON) > 0 && string(summaryJSON) != "null" {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal(summaryJSON, r.Summary); err != nil {
			return nil, err
		}
	}
	if len(logsJSON) > 0 {
		if err := json.Unmarshal(logsJSON, &r.Logs); err != nil {
			return nil, err
		}
	}
	return &r, nil
}
