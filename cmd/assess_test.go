package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/strategy-cli/internal/analysis"
	"github.com/sells-group/strategy-cli/internal/config"
	"github.com/sells-group/strategy-cli/internal/datasource"
	"github.com/sells-group/strategy-cli/internal/decision"
	"github.com/sells-group/strategy-cli/internal/export"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/span"
	"github.com/sells-group/strategy-cli/internal/store"
)

const testMarkets = `
markets:
  - id: pt
    name: Portugal
    currency: eur
    operators: [meo, nos, vodafone]
`

func f64(v float64) *float64 { return &v }

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// setupAssessEnv writes markets, data and insight files into a temp dir and
// points the global config at them.
func setupAssessEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "markets.yaml"), []byte(testMarkets), 0o644))
	writeJSONFile(t, filepath.Join(dir, "data.json"), datasource.Fixture{
		Macro: []model.MacroIndicator{
			{MarketID: "pt", Indicator: "market_growth", Period: "2025-Q2", Value: 1.4, Unit: "%"},
		},
		Roster: []model.Operator{
			{ID: "meo", MarketID: "pt", Name: "MEO"},
			{ID: "nos", MarketID: "pt", Name: "NOS"},
			{ID: "vodafone", MarketID: "pt", Name: "Vodafone"},
		},
	})
	writeJSONFile(t, filepath.Join(dir, "insights.json"), map[string][]analysis.Entry{
		"entries": {{
			OrgID:    "nos",
			MarketID: "pt",
			Trends: &model.TrendsInsight{
				PolicyOpportunities: []string{"5G spectrum auction"},
				PolicyThreats:       []string{"Roaming price cap"},
				Sources: []model.SourceReference{
					{Kind: model.SourceKindRegulator, URL: "https://anacom.example/q2", ExtractionConfidence: 0.9},
				},
			},
			Market: &model.MarketInsight{
				Segments: []model.SegmentAnalysis{{Name: "prepaid mobile", Health: model.HealthCritical, Flag: "URGENT: churn"}},
			},
			Competition: &model.CompetitionInsight{
				Comparison: []model.OperatorComparison{
					{OperatorID: "meo", Name: "MEO", Revenue: f64(600), SharePct: f64(41)},
					{OperatorID: "nos", Name: "NOS", Revenue: f64(420), SharePct: f64(29)},
					{OperatorID: "vodafone", Name: "Vodafone", Revenue: f64(400), SharePct: f64(27)},
				},
			},
			Self: &model.SelfInsight{
				OperatorID: "nos",
				Name:       "NOS",
				Strengths:  []string{"Fiber footprint"},
				Weaknesses: []string{"Prepaid churn"},
			},
		}},
	})

	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Store.DatabaseURL = filepath.Join(dir, "strategy.db")
	c.Markets.Path = filepath.Join(dir, "markets.yaml")
	c.Data.FixturePath = filepath.Join(dir, "data.json")
	c.Data.InsightsPath = filepath.Join(dir, "insights.json")
	c.Run.LookbackQuarters = 8
	c.Provenance.MediumSourceThreshold = 3
	c.SPAN = span.DefaultConfig()
	c.Decision = decision.DefaultConfig()
	cfg = c

	t.Cleanup(func() {
		assessOrg, assessMarket, assessEndPeriod, assessLookback, assessSave = "", "", "", 0, false
		exportRunID, exportOutput = "", ""
	})
	return dir
}

func TestAssessCommand_SaveAndExport(t *testing.T) {
	dir := setupAssessEnv(t)
	ctx := context.Background()

	assessOrg, assessMarket, assessSave = "nos", "pt", true
	assessCmd.SetContext(ctx)
	require.NoError(t, assessCmd.RunE(assessCmd, nil))

	st, err := store.NewSQLite(cfg.Store.DatabaseURL)
	require.NoError(t, err)
	runs, err := st.ListRuns(ctx, store.RunFilter{OrgID: "nos"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "2025-Q2", run.EndPeriod)
	require.NotNil(t, run.Result)
	assert.Equal(t, 2, run.Result.Diagnosis.Rank)

	sources, facts, err := st.LoadProvenance(ctx, run.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sources)
	assert.NotEmpty(t, facts)
	require.NoError(t, st.Close())

	out := filepath.Join(dir, "out.xlsx")
	exportRunID, exportOutput = run.ID, out
	exportCmd.SetContext(ctx)
	require.NoError(t, exportCmd.RunE(exportCmd, nil))

	rows, err := export.ReadSheet(out, export.SheetTasks)
	require.NoError(t, err)
	assert.Greater(t, len(rows), 1)
}

func TestAssessCommand_UnknownMarket(t *testing.T) {
	setupAssessEnv(t)

	assessOrg, assessMarket = "nos", "xx"
	assessCmd.SetContext(context.Background())
	err := assessCmd.RunE(assessCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: pt")
}

func TestAssessCommand_InvalidConfig(t *testing.T) {
	setupAssessEnv(t)
	cfg.Data.InsightsPath = ""

	assessCmd.SetContext(context.Background())
	err := assessCmd.RunE(assessCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.insights_path is required")
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	setupAssessEnv(t)
	cfg.Store.Driver = "mysql"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}
