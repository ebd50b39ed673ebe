package provenance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/strategy-cli/internal/model"
)

func registerExternal(l *Ledger, n int) {
	for i := range n {
		l.RegisterSource(model.SourceReference{
			Kind:                 model.SourceKindNews,
			URL:                  fmt.Sprintf("https://news.example/%d", i),
			ExtractionConfidence: 0.7,
		})
	}
}

func TestEnrichUnsourced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		external int
		want     model.ConfidenceLevel
		wantID   string
	}{
		{"below threshold", 2, model.ConfidenceLow, SyntheticLowID},
		{"at threshold", 3, model.ConfidenceMedium, SyntheticMediumID},
		{"above threshold", 6, model.ConfidenceMedium, SyntheticMediumID},
		{"no sources", 0, model.ConfidenceLow, SyntheticLowID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := NewLedger("run-1")
			registerExternal(l, tt.external)
			v := l.Track(12.5, "market_growth")
			require.Equal(t, model.ConfidenceEstimated, v.Confidence())

			n := l.EnrichUnsourced(3)
			assert.Equal(t, 1, n)
			assert.Equal(t, tt.want, v.Confidence())
			assert.Equal(t, tt.wantID, v.Source.ID)
			assert.Equal(t, "synthesized", v.ExtractionMethod)
		})
	}
}

func TestEnrichUnsourced_InternalSourcesDoNotCount(t *testing.T) {
	t.Parallel()

	l := NewLedger("run-1")
	registerExternal(l, 2)
	l.RegisterSource(model.SourceReference{Kind: model.SourceKindInternal, Document: "CRM export"})
	v := l.Track(1.0, "churn")

	l.EnrichUnsourced(3)
	assert.Equal(t, model.ConfidenceLow, v.Confidence())
}

func TestEnrichUnsourced_LeavesSourcedValuesAlone(t *testing.T) {
	t.Parallel()

	l := NewLedger("run-1")
	registerExternal(l, 3)
	sourced := l.Track(1.0, "revenue", WithSource(regulatorSource()), WithMethod("table"))
	unsourced := l.Track(2.0, "growth", WithDerivation("a/b", "a", "b"))

	n := l.EnrichUnsourced(3)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.ConfidenceHigh, sourced.Confidence())
	assert.Equal(t, "table", sourced.ExtractionMethod)
	assert.Equal(t, model.ConfidenceMedium, unsourced.Confidence())
	assert.Equal(t, "derived", unsourced.ExtractionMethod)
}

func TestEnrichUnsourced_NothingToDo(t *testing.T) {
	t.Parallel()

	l := NewLedger("run-1")
	l.Track(1.0, "revenue", WithSource(regulatorSource()))

	assert.Zero(t, l.EnrichUnsourced(3))
	assert.Len(t, l.Sources(), 1)
	_, ok := l.SourceByID(SyntheticLowID)
	assert.False(t, ok)
}

func TestEnrichUnsourced_SyntheticExcludedFromFootnotes(t *testing.T) {
	t.Parallel()

	l := NewLedger("run-1")
	l.Track(1.0, "growth")
	l.EnrichUnsourced(3)

	assert.Empty(t, l.Footnotes())
	assert.Equal(t, 0, l.QualityReport().ByConfidence[model.ConfidenceEstimated])
}
