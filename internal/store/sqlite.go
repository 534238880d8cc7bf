package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. A process-level
// mutex serializes upserts; SQLite has no row locks, and the read-merge-write
// cycle must not interleave.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sdb}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS opportunities (
	natural_key           TEXT PRIMARY KEY,
	fields                TEXT NOT NULL,
	sources               TEXT NOT NULL,
	field_sources         TEXT NOT NULL,
	source_data           TEXT NOT NULL,
	source_quality_scores TEXT NOT NULL,
	last_source           TEXT NOT NULL,
	first_seen_at         DATETIME NOT NULL,
	last_updated_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_opportunities_last_source ON opportunities(last_source);
CREATE INDEX IF NOT EXISTS idx_opportunities_last_updated ON opportunities(last_updated_at);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	scraper      TEXT NOT NULL,
	mode         TEXT,
	status       TEXT NOT NULL DEFAULT 'running',
	summary      TEXT,
	logs         TEXT,
	error        TEXT,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_scraper ON runs(scraper);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, c model.Contribution) (model.UpsertOutcome, error) {
	if c.NaturalKey == "" {
		return "", eris.New("sqlite: upsert: empty natural key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getOpportunity(ctx, c.NaturalKey)
	if err != nil {
		return "", err
	}

	merged := Merge(existing, c, time.Now().UTC())

	cols, err := opportunityJSON(merged)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: upsert: encode %s", c.NaturalKey)
	}

	outcome := model.OutcomeUpdated
	if existing == nil {
		outcome = model.OutcomeCreated
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO opportunities (natural_key, fields, sources, field_sources, source_data, source_quality_scores, last_source, first_seen_at, last_updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			merged.NaturalKey, string(cols.fields), string(cols.sources), string(cols.fieldSources),
			string(cols.sourceData), string(cols.qualityScores), merged.LastSource, merged.FirstSeenAt, merged.LastUpdatedAt,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE opportunities SET fields = ?, sources = ?, field_sources = ?, source_data = ?, source_quality_scores = ?, last_source = ?, last_updated_at = ? WHERE natural_key = ?`,
			string(cols.fields), string(cols.sources), string(cols.fieldSources), string(cols.sourceData),
			string(cols.qualityScores), merged.LastSource, merged.LastUpdatedAt, merged.NaturalKey,
		)
	}
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: upsert: write %s", c.NaturalKey)
	}
	return outcome, nil
}

func (s *SQLiteStore) GetOpportunity(ctx context.Context, naturalKey string) (*model.Opportunity, error) {
	return s.getOpportunity(ctx, naturalKey)
}

func (s *SQLiteStore) getOpportunity(ctx context.Context, naturalKey string) (*model.Opportunity, error) {
	var o model.Opportunity
	var fields, sources, fieldSources, sourceData, qualityScores string

	err := s.db.QueryRowContext(ctx,
		`SELECT natural_key, fields, sources, field_sources, source_data, source_quality_scores, last_source, first_seen_at, last_updated_at
		 FROM opportunities WHERE natural_key = ?`,
		naturalKey,
	).Scan(&o.NaturalKey, &fields, &sources, &fieldSources, &sourceData, &qualityScores,
		&o.LastSource, &o.FirstSeenAt, &o.LastUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get opportunity %s", naturalKey)
	}

	for _, pair := range []struct {
		raw string
		dst any
	}{
		{fields, &o.Fields},
		{sources, &o.Sources},
		{fieldSources, &o.FieldSources},
		{sourceData, &o.SourceData},
		{qualityScores, &o.SourceQualityScores},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dst); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode opportunity %s", naturalKey)
		}
	}
	return &o, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, scraper string, mode model.RunMode) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, scraper, mode, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, scraper, string(mode), string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Scraper:   scraper,
		Mode:      mode,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary, logs []string, errMsg string) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}
	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal logs")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, summary = ?, logs = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), string(summaryJSON), string(logsJSON), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scraper, mode, status, summary, logs, error, started_at, completed_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanSQLiteRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, scraper, mode, status, summary, logs, error, started_at, completed_at FROM runs WHERE true`
	args := []any{}

	if filter.Scraper != "" {
		query += ` AND scraper = ?`
		args = append(args, filter.Scraper)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanSQLiteRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func scanSQLiteRun(scan func(dest ...any) error) (*model.Run, error) {
	var r model.Run
	var mode, summaryJSON, logsJSON, errMsg sql.NullString
	var completedAt sql.NullTime

	if err := scan(&r.ID, &r.Scraper, &mode, &r.Status, &summaryJSON, &logsJSON, &errMsg, &r.StartedAt, &completedAt); err != nil {
		return nil, err
	}

	r.Mode = model.RunMode(mode.String)
	r.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	if summaryJSON.Valid && summaryJSON.String != "" && summaryJSON.String != "null" {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), r.Summary); err != nil {
			return nil, err
		}
	}
	if logsJSON.Valid && logsJSON.String != "" {
		if err := json.Unmarshal([]byte(logsJSON.String), &r.Logs); err != nil {
			return nil, err
		}
	}
	return &r, nil
}
