package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/strategy-cli/internal/market"
	"github.com/sells-group/strategy-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			OrgID:     "nos",
			MarketID:  "pt",
			EndPeriod: "2025-Q2",
			Status:    model.RunStatusComplete,
			Result:    &model.Assessment{Diagnosis: &model.StrategicDiagnosis{Label: "Squeezed Middle"}},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			OrgID:     "meo",
			MarketID:  "pt",
			Status:    model.RunStatusAnalyzing,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-1 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "LABEL")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "Squeezed Middle")
	assert.Contains(t, output, "2025-Q2")
	assert.Contains(t, output, "analyzing")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "2s")
}

func TestTruncateID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc12345-6789", "abc12345"},
		{"short", "short"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateID(tt.in))
	}
}

func TestFormatMarkets(t *testing.T) {
	var buf bytes.Buffer
	formatMarkets(&buf, []market.Config{
		{ID: "pt", Name: "Portugal", Currency: "EUR", Operators: []string{"meo", "nos", "vodafone"}},
	})

	output := buf.String()
	assert.Contains(t, output, "CURRENCY")
	assert.Contains(t, output, "Portugal")
	assert.Contains(t, output, "meo,nos,vodafone")
}

func TestFormatProvenance(t *testing.T) {
	var buf bytes.Buffer
	formatProvenance(&buf,
		[]model.Footnote{{Index: 1, SourceID: "s1", Text: "https://regulator.example/q2"}},
		model.QualityReport{
			TotalValues:   4,
			ByConfidence:  map[model.ConfidenceLevel]int{model.ConfidenceHigh: 3, model.ConfidenceMedium: 1},
			UniqueSources: 2,
		},
	)

	output := buf.String()
	assert.Contains(t, output, "Values:")
	assert.Contains(t, output, "high:")
	assert.Contains(t, output, "[1] https://regulator.example/q2")
}

func TestFormatProvenance_NoFootnotes(t *testing.T) {
	var buf bytes.Buffer
	formatProvenance(&buf, nil, model.QualityReport{})
	assert.NotContains(t, buf.String(), "[1]")
}
