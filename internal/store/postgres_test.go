package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/strategy-cli/internal/db"
	"github.com/sells-group/strategy-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var runColumns = []string{"id", "org_id", "market_id", "end_period", "status", "result", "created_at", "updated_at"}

func expectUpsert(m pgxmock.PgxPoolIface, table string, cols []string, n int64) {
	m.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectCopyFrom(pgx.Identifier{db.TempTable(table)}, cols).WillReturnResult(n)
	m.ExpectExec("DELETE FROM").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	m.ExpectExec(`INSERT INTO "` + table + `"`).WillReturnResult(pgxmock.NewResult("INSERT", n))
	m.ExpectExec("TRUNCATE").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "op-t", "pt", "2025-Q2", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.RunRequest{OrgID: "op-t", MarketID: "pt", EndPeriod: "2025-Q2"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, org_id, market_id, end_period, status, result, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(runColumns).
			AddRow("run-1", "op-t", "pt", "2025-Q2", "complete", []byte(`{"diagnosis":{"label":"Squeezed Middle"}}`), now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, "Squeezed Middle", run.Result.Diagnosis.Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET result`).
		WithArgs(pgxmock.AnyArg(), "complete", "2025-Q3", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateRunResult(context.Background(), "run-1", &model.Assessment{Bundle: &model.Bundle{EndPeriod: "2025-Q3"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE true AND status = \$1 AND org_id = \$2 AND market_id = \$3 ORDER BY created_at DESC, id LIMIT \$4 OFFSET \$5`).
		WithArgs("complete", "op-t", "pt", 10, 20).
		WillReturnRows(pgxmock.NewRows(runColumns).
			AddRow("run-1", "op-t", "pt", "2025-Q2", "complete", []byte(`{}`), now, now).
			AddRow("run-2", "op-t", "pt", "2025-Q1", "complete", []byte(`{}`), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{
		Status: model.RunStatusComplete, OrgID: "op-t", MarketID: "pt", Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE true ORDER BY created_at DESC, id LIMIT \$1$`).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows(runColumns))

	runs, err := s.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveProvenance(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	sources, facts := sampleRecords("run-1")

	mock.ExpectBegin()
	expectUpsert(mock, "provenance_sources", sourceColumns, int64(len(sources)))
	expectUpsert(mock, "provenance_facts", factColumns, int64(len(facts)))
	mock.ExpectCommit()

	require.NoError(t, s.SaveProvenance(context.Background(), "run-1", sources, facts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveProvenance_RollsBackOnFactError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	sources, facts := sampleRecords("run-1")

	mock.ExpectBegin()
	expectUpsert(mock, "provenance_sources", sourceColumns, int64(len(sources)))
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.SaveProvenance(context.Background(), "run-1", sources, facts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save facts for run run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadProvenance(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	collected := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM provenance_sources WHERE run_id = \$1 ORDER BY position, id`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "kind", "url", "document_name", "publisher", "publication_date", "collected_at",
			"extraction_confidence", "confidence_band", "position",
		}).AddRow("src_a", "regulator", "https://regulator.example/q2", "Q2 report", "Regulator", (*time.Time)(nil), collected, 0.9, "high", 0))
	mock.ExpectQuery(`FROM provenance_facts WHERE run_id = \$1 ORDER BY seq`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"seq", "field_name", "source_id", "confidence", "extraction_method", "raw_text",
			"operator_id", "period", "value_text", "unit",
		}).AddRow(1, "revenue", "src_a", 0.9, "reported", "", "op-t", "2025-Q2", "250", "EUR m"))

	sources, facts, err := s.LoadProvenance(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Len(t, facts, 1)
	assert.Equal(t, "run-1", sources[0].RunID)
	assert.Equal(t, "high", sources[0].ConfidenceBand)
	assert.Equal(t, "250", facts[0].ValueText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
