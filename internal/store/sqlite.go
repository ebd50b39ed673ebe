package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/strategy-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	org_id     TEXT NOT NULL,
	market_id  TEXT NOT NULL,
	end_period TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS provenance_sources (
	run_id                TEXT NOT NULL REFERENCES runs(id),
	id                    TEXT NOT NULL,
	kind                  TEXT NOT NULL,
	url                   TEXT NOT NULL DEFAULT '',
	document_name         TEXT NOT NULL DEFAULT '',
	publisher             TEXT NOT NULL DEFAULT '',
	publication_date      DATETIME,
	collected_at          DATETIME NOT NULL,
	extraction_confidence REAL NOT NULL DEFAULT 0,
	confidence_band       TEXT NOT NULL DEFAULT '',
	position              INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, id)
);

CREATE TABLE IF NOT EXISTS provenance_facts (
	run_id            TEXT NOT NULL REFERENCES runs(id),
	seq               INTEGER NOT NULL,
	field_name        TEXT NOT NULL,
	source_id         TEXT NOT NULL DEFAULT '',
	confidence        REAL NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL DEFAULT '',
	raw_text          TEXT NOT NULL DEFAULT '',
	operator_id       TEXT NOT NULL DEFAULT '',
	period            TEXT NOT NULL DEFAULT '',
	value_text        TEXT NOT NULL DEFAULT '',
	unit              TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_org_market ON runs(org_id, market_id);
CREATE INDEX IF NOT EXISTS idx_provenance_facts_field ON provenance_facts(run_id, field_name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, req model.RunRequest) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, org_id, market_id, end_period, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, req.OrgID, req.MarketID, req.EndPeriod, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		OrgID:     req.OrgID,
		MarketID:  req.MarketID,
		EndPeriod: req.EndPeriod,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

// UpdateRunResult stores the assessment, marks the run complete and records
// the resolved end period.
func (s *SQLiteStore) UpdateRunResult(ctx context.Context, runID string, result *model.Assessment) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET result = ?, status = ?, end_period = COALESCE(NULLIF(?, ''), end_period), updated_at = ? WHERE id = ?`,
		string(resultJSON), string(model.RunStatusComplete), resultEndPeriod(result), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run result %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, org_id, market_id, end_period, status, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, org_id, market_id, end_period, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.OrgID != "" {
		query += ` AND org_id = ?`
		args = append(args, filter.OrgID)
	}
	if filter.MarketID != "" {
		query += ` AND market_id = ?`
		args = append(args, filter.MarketID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))

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
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// SaveProvenance upserts every source and fact for runID in one transaction.
func (s *SQLiteStore) SaveProvenance(ctx context.Context, runID string, sources []model.SourceRecord, facts []model.FactRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin provenance tx")
	}
	defer tx.Rollback() //nolint:errcheck

	srcStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO provenance_sources (run_id, id, kind, url, document_name, publisher, publication_date,
			collected_at, extraction_confidence, confidence_band, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, id) DO UPDATE SET
			kind = excluded.kind, url = excluded.url, document_name = excluded.document_name,
			publisher = excluded.publisher, publication_date = excluded.publication_date,
			collected_at = excluded.collected_at, extraction_confidence = excluded.extraction_confidence,
			confidence_band = excluded.confidence_band, position = excluded.position`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare source upsert")
	}
	defer srcStmt.Close() //nolint:errcheck

	for _, src := range sources {
		var published any
		if src.PublicationDate != nil {
			published = src.PublicationDate.UTC()
		}
		if _, err := srcStmt.ExecContext(ctx,
			runID, src.ID, src.Kind, src.URL, src.DocumentName, src.Publisher, published,
			src.CollectedAt.UTC(), src.ExtractionConfidence, src.ConfidenceBand, src.Position,
		); err != nil {
			return eris.Wrapf(err, "sqlite: upsert source %s", src.ID)
		}
	}

	factStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO provenance_facts (run_id, seq, field_name, source_id, confidence, extraction_method,
			raw_text, operator_id, period, value_text, unit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, seq) DO UPDATE SET
			field_name = excluded.field_name, source_id = excluded.source_id, confidence = excluded.confidence,
			extraction_method = excluded.extraction_method, raw_text = excluded.raw_text,
			operator_id = excluded.operator_id, period = excluded.period,
			value_text = excluded.value_text, unit = excluded.unit`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare fact upsert")
	}
	defer factStmt.Close() //nolint:errcheck

	for _, f := range facts {
		if _, err := factStmt.ExecContext(ctx,
			runID, f.Seq, f.FieldName, f.SourceID, f.Confidence, f.ExtractionMethod,
			f.RawText, f.OperatorID, f.Period, f.ValueText, f.Unit,
		); err != nil {
			return eris.Wrapf(err, "sqlite: upsert fact %d", f.Seq)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit provenance")
}

// LoadProvenance returns the persisted sources by position and facts by seq.
func (s *SQLiteStore) LoadProvenance(ctx context.Context, runID string) ([]model.SourceRecord, []model.FactRecord, error) {
	srcRows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, url, document_name, publisher, publication_date, collected_at,
			extraction_confidence, confidence_band, position
		FROM provenance_sources WHERE run_id = ? ORDER BY position, id`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: query sources")
	}
	defer srcRows.Close()

	var sources []model.SourceRecord
	for srcRows.Next() {
		src := model.SourceRecord{RunID: runID}
		var published sql.NullTime
		if err := srcRows.Scan(&src.ID, &src.Kind, &src.URL, &src.DocumentName, &src.Publisher, &published,
			&src.CollectedAt, &src.ExtractionConfidence, &src.ConfidenceBand, &src.Position); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan source")
		}
		if published.Valid {
			t := published.Time.UTC()
			src.PublicationDate = &t
		}
		src.CollectedAt = src.CollectedAt.UTC()
		sources = append(sources, src)
	}
	if err := srcRows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: iterate sources")
	}

	factRows, err := s.db.QueryContext(ctx, `
		SELECT seq, field_name, source_id, confidence, extraction_method, raw_text,
			operator_id, period, value_text, unit
		FROM provenance_facts WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: query facts")
	}
	defer factRows.Close()

	var facts []model.FactRecord
	for factRows.Next() {
		f := model.FactRecord{RunID: runID}
		if err := factRows.Scan(&f.Seq, &f.FieldName, &f.SourceID, &f.Confidence, &f.ExtractionMethod,
			&f.RawText, &f.OperatorID, &f.Period, &f.ValueText, &f.Unit); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan fact")
		}
		facts = append(facts, f)
	}
	return sources, facts, eris.Wrap(factRows.Err(), "sqlite: iterate facts")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var resultJSON sql.NullString

	if err := row.Scan(&r.ID, &r.OrgID, &r.MarketID, &r.EndPeriod, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if resultJSON.Valid {
		r.Result = &model.Assessment{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal result")
		}
	}
	return &r, nil
}

func resultEndPeriod(a *model.Assessment) string {
	if a == nil || a.Bundle == nil {
		return ""
	}
	return a.Bundle.EndPeriod
}
