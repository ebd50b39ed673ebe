package swot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

func sampleInputs() Inputs {
	return Inputs{
		Trends: &model.TrendsInsight{
			PolicyOpportunities: []string{"5G spectrum release", "Rural broadband subsidy"},
			PolicyThreats:       []string{"Stricter net neutrality"},
		},
		Market: &model.MarketInsight{
			Changes: []model.MarketChange{
				{Kind: model.ImpactOpportunity, Description: "Enterprise IoT demand"},
				{Kind: model.ImpactOpportunity, Description: "5g spectrum release"},
				{Kind: model.ImpactThreat, Description: "Prepaid price erosion"},
				{Kind: model.ImpactNeutral, Description: "Stable roaming revenue"},
			},
		},
		Competition: &model.CompetitionInsight{
			Forces: []model.PorterForce{
				{Force: "buyer power", Level: model.ForceHigh},
				{Force: "rivalry", Level: model.ForceMedium},
				{Force: "substitutes", Level: model.ForceLow},
				{Force: "new entrants", Level: "HIGH"},
			},
		},
		Self: &model.SelfInsight{
			Strengths:  []string{"Converged bundles", "Fiber footprint", "Converged bundles"},
			Weaknesses: []string{"Legacy IT stack"},
			ExposurePoints: []model.ExposurePoint{
				{Area: "Prepaid", SideEffect: "High prepaid churn"},
				{Area: "IT", SideEffect: "legacy IT stack"},
				{Area: "Brand"},
			},
		},
	}
}

func TestBuild_Quadrants(t *testing.T) {
	t.Parallel()

	got := Build(sampleInputs(), nil)

	assert.Equal(t, []string{"Converged bundles", "Fiber footprint", "Converged bundles"}, got.Strengths)
	assert.Equal(t, []string{"Legacy IT stack", "High prepaid churn", "legacy IT stack"}, got.Weaknesses)
	assert.Equal(t, []string{"5G spectrum release", "Rural broadband subsidy", "Enterprise IoT demand", "5g spectrum release"}, got.Opportunities)
	assert.Equal(t, []string{
		"Stricter net neutrality",
		"Prepaid price erosion",
		"High Buyer Power pressure",
		"High New Entrants pressure",
	}, got.Threats)
}

func TestBuild_Strategies(t *testing.T) {
	t.Parallel()

	got := Build(sampleInputs(), nil)

	require.Len(t, got.SO, 4)
	assert.Equal(t, "Use Converged bundles to capture 5G spectrum release", got.SO[0])
	assert.Equal(t, "Use Fiber footprint to capture Rural broadband subsidy", got.SO[1])
	assert.Equal(t, "Use Converged bundles to capture Enterprise IoT demand", got.SO[2])
	assert.Equal(t, "Use Converged bundles to capture 5g spectrum release", got.SO[3])

	assert.Len(t, got.WO, 4)
	assert.Len(t, got.ST, 4)
	assert.Len(t, got.WT, 4)
	assert.Equal(t, "Limit exposure where High prepaid churn meets Prepaid price erosion", got.WT[1])
}

func TestBuild_StrengthsVerbatim(t *testing.T) {
	t.Parallel()

	in := Inputs{Self: &model.SelfInsight{
		Strengths:  []string{"Fibre", "fibre", " Brand "},
		Weaknesses: []string{"Churn", "churn", "Churn"},
	}}
	got := Build(in, nil)

	assert.Equal(t, []string{"Fibre", "fibre", " Brand "}, got.Strengths)
	assert.Equal(t, []string{"Churn", "churn"}, got.Weaknesses)

	in.Self.Strengths[0] = "changed"
	assert.Equal(t, "Fibre", got.Strengths[0])
}

func TestDedup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"exact repeats", []string{"a", "b", "a"}, []string{"a", "b"}},
		{"case differs", []string{"IoT", "iot"}, []string{"IoT", "iot"}},
		{"whitespace differs", []string{"IoT", " IoT"}, []string{"IoT", " IoT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dedup(tt.in))
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	a := Build(sampleInputs(), nil)
	b := Build(sampleInputs(), nil)
	assert.Equal(t, a, b)
}

func TestBuild_EmptyListYieldsEmptyStrategies(t *testing.T) {
	t.Parallel()

	in := sampleInputs()
	in.Self.Weaknesses = nil
	in.Self.ExposurePoints = nil
	in.Market = nil
	in.Competition = nil
	in.Trends.PolicyThreats = nil

	got := Build(in, nil)
	assert.Empty(t, got.Weaknesses)
	assert.Empty(t, got.Threats)
	assert.NotEmpty(t, got.SO)
	assert.Empty(t, got.WO)
	assert.Empty(t, got.ST)
	assert.Empty(t, got.WT)
}

func TestBuild_AllEmpty(t *testing.T) {
	t.Parallel()

	got := Build(Inputs{}, nil)
	assert.Empty(t, got.Strengths)
	assert.Empty(t, got.Weaknesses)
	assert.Empty(t, got.Opportunities)
	assert.Empty(t, got.Threats)
	assert.Empty(t, got.SO)
	assert.Empty(t, got.WO)
	assert.Empty(t, got.ST)
	assert.Empty(t, got.WT)
	assert.Equal(t, InsufficientDataSummary, got.Summary)
	assert.NotNil(t, got.SO)
}

func TestBuild_TracksQuadrantSizes(t *testing.T) {
	t.Parallel()

	l := provenance.NewLedger("run-1")
	Build(sampleInputs(), l)

	vals := l.Query(provenance.Filter{FieldName: "swot_threats"})
	require.Len(t, vals, 1)
	assert.Equal(t, 4, vals[0].Value)
	require.NotNil(t, vals[0].Derivation)
}

func TestPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"one by one", []string{"a"}, []string{"x"}, 1},
		{"one by two", []string{"a"}, []string{"x", "y"}, 2},
		{"two by two", []string{"a", "b"}, []string{"x", "y"}, 2},
		{"three by one", []string{"a", "b", "c"}, []string{"x"}, 3},
		{"six by two", []string{"a", "b", "c", "d", "e", "f"}, []string{"x", "y"}, 4},
		{"empty left", nil, []string{"x"}, 0},
		{"empty right", []string{"a"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := pair(tt.a, tt.b, soTemplate)
			assert.Len(t, got, tt.want)
			seen := map[string]bool{}
			for _, s := range got {
				assert.False(t, seen[s], "duplicate %q", s)
				seen[s] = true
			}
		})
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		s, w, o, t int
		want       string
	}{
		{"strong favourable", 2, 1, 2, 2, "Strong position in a favourable market: press the advantage (S=2, W=1, O=2, T=2)"},
		{"strong hostile", 2, 2, 1, 3, "Strong position in a hostile market: defend and diversify (S=2, W=2, O=1, T=3)"},
		{"weak favourable", 1, 3, 2, 0, "Weak position in a favourable market: close gaps to capture upside (S=1, W=3, O=2, T=0)"},
		{"weak hostile", 0, 1, 0, 1, "Weak position in a hostile market: protect the core (S=0, W=1, O=0, T=1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &model.SWOTAnalysis{
				Strengths:     make([]string, tt.s),
				Weaknesses:    make([]string, tt.w),
				Opportunities: make([]string, tt.o),
				Threats:       make([]string, tt.t),
			}
			assert.Equal(t, tt.want, summary(s))
		})
	}
}
