package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/strategy-cli/internal/config"
	"github.com/sells-group/strategy-cli/internal/export"
	"github.com/sells-group/strategy-cli/internal/market"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/store"
	"github.com/sells-group/strategy-cli/internal/store/mocks"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{Port: 8080, RateLimit: 100, Burst: 100, AllowedOrigins: []string{"*"}}
}

func testRegistry() *market.Registry {
	return market.NewRegistry(
		market.Config{ID: "pt", Name: "Portugal", Currency: "EUR"},
		market.Config{ID: "es", Name: "Spain", Currency: "EUR"},
	)
}

func serve(t *testing.T, st store.Store, cfg config.ServerConfig, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := New(st, testRegistry(), cfg).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func provenanceRows(runID string) ([]model.SourceRecord, []model.FactRecord) {
	sources := []model.SourceRecord{
		{RunID: runID, ID: "src-1", Kind: "regulator", URL: "https://regulator.example/q2", ExtractionConfidence: 0.9, ConfidenceBand: "high", CollectedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	facts := []model.FactRecord{
		{RunID: runID, Seq: 1, FieldName: "revenue", SourceID: "src-1", OperatorID: "op-t", Period: "2025-Q2", ValueText: "250", Unit: "EUR m"},
		{RunID: runID, Seq: 2, FieldName: "share_gap", ValueText: "25", Unit: "pp"},
	}
	return sources, facts
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rr := serve(t, mocks.NewMockStore(t), testServerConfig(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListMarkets(t *testing.T) {
	t.Parallel()

	rr := serve(t, mocks.NewMockStore(t), testServerConfig(), http.MethodGet, "/markets")
	require.Equal(t, http.StatusOK, rr.Code)

	var markets []market.Config
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &markets))
	require.Len(t, markets, 2)
	assert.Equal(t, "es", markets[0].ID)
	assert.Equal(t, "pt", markets[1].ID)
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	want := store.RunFilter{Status: model.RunStatusComplete, OrgID: "op-t", MarketID: "pt", Limit: 5, Offset: 10}
	st.On("ListRuns", mock.Anything, want).Return([]model.Run{{ID: "run-1", Status: model.RunStatusComplete}}, nil)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs?status=complete&org=op-t&market=pt&limit=5&offset=10")
	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestListRuns_EmptyIsArray(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	st.On("ListRuns", mock.Anything, store.RunFilter{}).Return(nil, nil)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestListRuns_BadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		msg   string
	}{
		{"limit=abc", "invalid limit"},
		{"limit=-1", "invalid limit"},
		{"offset=x", "invalid offset"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, mocks.NewMockStore(t), testServerConfig(), http.MethodGet, "/runs?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.msg)
		})
	}
}

func TestListRuns_StoreError(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	st.On("ListRuns", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection reset")
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	st.On("GetRun", mock.Anything, "run-1").Return(&model.Run{ID: "run-1", OrgID: "op-t", Status: model.RunStatusComplete}, nil)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs/run-1")
	require.Equal(t, http.StatusOK, rr.Code)

	var run model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.Equal(t, "op-t", run.OrgID)
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	st.On("GetRun", mock.Anything, "missing").Return(nil, eris.Wrap(store.ErrNotFound, "sqlite: get run missing"))

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "run not found")
}

func TestGetProvenance(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	sources, facts := provenanceRows("run-1")
	st.On("GetRun", mock.Anything, "run-1").Return(&model.Run{ID: "run-1"}, nil)
	st.On("LoadProvenance", mock.Anything, "run-1").Return(sources, facts, nil)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs/run-1/provenance")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp provenanceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, 2, resp.Quality.TotalValues)
	assert.Equal(t, 1, resp.Quality.ByConfidence[model.ConfidenceHigh])
	assert.Equal(t, 1, resp.Quality.ByConfidence[model.ConfidenceEstimated])
	require.Len(t, resp.Footnotes, 1)
	assert.Equal(t, "https://regulator.example/q2", resp.Footnotes[0].Text)
	require.Len(t, resp.Sources, 1)
}

func TestGetProvenance_RunNotFound(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	st.On("GetRun", mock.Anything, "missing").Return(nil, store.ErrNotFound)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs/missing/provenance")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	st.AssertNotCalled(t, "LoadProvenance", mock.Anything, mock.Anything)
}

func TestExportRun(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	sources, facts := provenanceRows("run-1")
	result := &model.Assessment{
		Bundle: &model.Bundle{RunID: "run-1"},
		Decisions: &model.ThreeDecisions{KeyTasks: model.TaskDecision{Tasks: []model.Task{
			{Name: "EBITDA recovery programme", Domain: "Efficiency", Priority: model.PriorityP0},
		}}},
	}
	st.On("GetRun", mock.Anything, "run-1").Return(&model.Run{ID: "run-1", Result: result}, nil)
	st.On("LoadProvenance", mock.Anything, "run-1").Return(sources, facts, nil)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs/run-1/export")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "run-1.xlsx")

	rows, err := export.ReadSheetBinary(rr.Body.Bytes(), export.SheetTasks)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "EBITDA recovery programme", rows[1][3])
}

func TestExportRun_NoResult(t *testing.T) {
	t.Parallel()

	st := mocks.NewMockStore(t)
	st.On("GetRun", mock.Anything, "run-2").Return(&model.Run{ID: "run-2", Status: model.RunStatusAnalyzing}, nil)

	rr := serve(t, st, testServerConfig(), http.MethodGet, "/runs/run-2/export")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testServerConfig()
	cfg.RateLimit = 0.001
	cfg.Burst = 2
	h := New(mocks.NewMockStore(t), testRegistry(), cfg).Handler()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rr.Code)
		if rr.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rr.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	h := New(mocks.NewMockStore(t), testRegistry(), testServerConfig()).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
