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

	"github.com/sells-group/strategy-cli/internal/db"
	"github.com/sells-group/strategy-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	org_id     TEXT NOT NULL,
	market_id  TEXT NOT NULL,
	end_period TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS provenance_sources (
	run_id                TEXT NOT NULL REFERENCES runs(id),
	id                    TEXT NOT NULL,
	kind                  TEXT NOT NULL,
	url                   TEXT NOT NULL DEFAULT '',
	document_name         TEXT NOT NULL DEFAULT '',
	publisher             TEXT NOT NULL DEFAULT '',
	publication_date      TIMESTAMPTZ,
	collected_at          TIMESTAMPTZ NOT NULL,
	extraction_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence_band       TEXT NOT NULL DEFAULT '',
	position              INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, id)
);

CREATE TABLE IF NOT EXISTS provenance_facts (
	run_id            TEXT NOT NULL REFERENCES runs(id),
	seq               INTEGER NOT NULL,
	field_name        TEXT NOT NULL,
	source_id         TEXT NOT NULL DEFAULT '',
	confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
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

var (
	sourceColumns = []string{
		"run_id", "id", "kind", "url", "document_name", "publisher", "publication_date",
		"collected_at", "extraction_confidence", "confidence_band", "position",
	}
	factColumns = []string{
		"run_id", "seq", "field_name", "source_id", "confidence", "extraction_method",
		"raw_text", "operator_id", "period", "value_text", "unit",
	}
)

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
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

func (s *PostgresStore) CreateRun(ctx context.Context, req model.RunRequest) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, org_id, market_id, end_period, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, req.OrgID, req.MarketID, req.EndPeriod, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunResult(ctx context.Context, runID string, result *model.Assessment) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, end_period = COALESCE(NULLIF($3, ''), end_period), updated_at = $4 WHERE id = $5`,
		resultJSON, string(model.RunStatusComplete), resultEndPeriod(result), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run result %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	r, err := scanPgRun(s.pool.QueryRow(ctx,
		`SELECT id, org_id, market_id, end_period, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, org_id, market_id, end_period, status, result, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.OrgID != "" {
		query += fmt.Sprintf(` AND org_id = $%d`, argIdx)
		args = append(args, filter.OrgID)
		argIdx++
	}
	if filter.MarketID != "" {
		query += fmt.Sprintf(` AND market_id = $%d`, argIdx)
		args = append(args, filter.MarketID)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter))
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
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveProvenance bulk-upserts sources and facts for runID in one transaction.
func (s *PostgresStore) SaveProvenance(ctx context.Context, runID string, sources []model.SourceRecord, facts []model.FactRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin provenance tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	srcRows := make([][]any, 0, len(sources))
	for _, src := range sources {
		srcRows = append(srcRows, []any{
			runID, src.ID, src.Kind, src.URL, src.DocumentName, src.Publisher, src.PublicationDate,
			src.CollectedAt.UTC(), src.ExtractionConfidence, src.ConfidenceBand, src.Position,
		})
	}
	if _, err := db.UpsertTx(ctx, tx, db.UpsertConfig{
		Table:        "provenance_sources",
		Columns:      sourceColumns,
		ConflictKeys: []string{"run_id", "id"},
	}, srcRows); err != nil {
		return eris.Wrapf(err, "postgres: save sources for run %s", runID)
	}

	factRows := make([][]any, 0, len(facts))
	for _, f := range facts {
		factRows = append(factRows, []any{
			runID, f.Seq, f.FieldName, f.SourceID, f.Confidence, f.ExtractionMethod,
			f.RawText, f.OperatorID, f.Period, f.ValueText, f.Unit,
		})
	}
	if _, err := db.UpsertTx(ctx, tx, db.UpsertConfig{
		Table:        "provenance_facts",
		Columns:      factColumns,
		ConflictKeys: []string{"run_id", "seq"},
	}, factRows); err != nil {
		return eris.Wrapf(err, "postgres: save facts for run %s", runID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit provenance")
}

func (s *PostgresStore) LoadProvenance(ctx context.Context, runID string) ([]model.SourceRecord, []model.FactRecord, error) {
	srcRows, err := s.pool.Query(ctx, `
		SELECT id, kind, url, document_name, publisher, publication_date, collected_at,
			extraction_confidence, confidence_band, position
		FROM provenance_sources WHERE run_id = $1 ORDER BY position, id`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: query sources")
	}
	var sources []model.SourceRecord
	for srcRows.Next() {
		src := model.SourceRecord{RunID: runID}
		if err := srcRows.Scan(&src.ID, &src.Kind, &src.URL, &src.DocumentName, &src.Publisher, &src.PublicationDate,
			&src.CollectedAt, &src.ExtractionConfidence, &src.ConfidenceBand, &src.Position); err != nil {
			srcRows.Close()
			return nil, nil, eris.Wrap(err, "postgres: scan source")
		}
		sources = append(sources, src)
	}
	srcRows.Close()
	if err := srcRows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: iterate sources")
	}

	factRows, err := s.pool.Query(ctx, `
		SELECT seq, field_name, source_id, confidence, extraction_method, raw_text,
			operator_id, period, value_text, unit
		FROM provenance_facts WHERE run_id = $1 ORDER BY seq`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: query facts")
	}
	defer factRows.Close()

	var facts []model.FactRecord
	for factRows.Next() {
		f := model.FactRecord{RunID: runID}
		if err := factRows.Scan(&f.Seq, &f.FieldName, &f.SourceID, &f.Confidence, &f.ExtractionMethod,
			&f.RawText, &f.OperatorID, &f.Period, &f.ValueText, &f.Unit); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan fact")
		}
		facts = append(facts, f)
	}
	return sources, facts, eris.Wrap(factRows.Err(), "postgres: iterate facts")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var status string
	var resultJSON []byte

	if err := row.Scan(&r.ID, &r.OrgID, &r.MarketID, &r.EndPeriod, &status, &resultJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)
	if resultJSON != nil {
		r.Result = &model.Assessment{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal result")
		}
	}
	return &r, nil
}
