package model

// Domain insight records produced by the four analyzers and the tariff
// side-analysis. The synthesis stages read them and never re-derive them.

// PESTDimension is one of the four macro-factor axes.
type PESTDimension string

const (
	PESTPolitical     PESTDimension = "political"
	PESTEconomic      PESTDimension = "economic"
	PESTSocial        PESTDimension = "social"
	PESTTechnological PESTDimension = "technological"
)

// Impact is the direction of a factor or change for the target.
type Impact string

const (
	ImpactOpportunity Impact = "opportunity"
	ImpactThreat      Impact = "threat"
	ImpactNeutral     Impact = "neutral"
)

// PESTFactor is one macro factor.
type PESTFactor struct {
	Dimension   PESTDimension `json:"dimension"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Impact      Impact        `json:"impact"`
	SourceID    string        `json:"source_id,omitempty"`
}

// TechnologyTrend is a technology item surfaced by trend analysis.
type TechnologyTrend struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Maturity    string   `json:"maturity,omitempty"` // emerging, growing, mature
	AdoptionPct *float64 `json:"adoption_pct,omitempty"`
}

// TrendsInsight is the macro-trend (PEST) analysis.
type TrendsInsight struct {
	Factors             []PESTFactor      `json:"factors"`
	PolicyOpportunities []string          `json:"policy_opportunities"`
	PolicyThreats       []string          `json:"policy_threats"`
	Technologies        []TechnologyTrend `json:"technologies"`
	Narrative           string            `json:"narrative,omitempty"`
	Sources             []SourceReference `json:"sources,omitempty"`
}

// MarketChange is one observed change in the market.
type MarketChange struct {
	Kind        Impact   `json:"kind"`
	Area        string   `json:"area,omitempty"`
	Description string   `json:"description"`
	GrowthPct   *float64 `json:"growth_pct,omitempty"`
	SourceID    string   `json:"source_id,omitempty"`
}

// HealthLevel is a qualitative health grade.
type HealthLevel string

const (
	HealthHealthy    HealthLevel = "healthy"
	HealthStable     HealthLevel = "stable"
	HealthConcerning HealthLevel = "concerning"
	HealthCritical   HealthLevel = "critical"
)

// SegmentAnalysis describes one customer segment.
type SegmentAnalysis struct {
	Name      string      `json:"name"`
	Health    HealthLevel `json:"health"`
	Flag      string      `json:"flag,omitempty"` // e.g. "URGENT: churn above 3%"
	SharePct  *float64    `json:"share_pct,omitempty"`
	GrowthPct *float64    `json:"growth_pct,omitempty"`
	ChurnPct  *float64    `json:"churn_pct,omitempty"`
}

// MarketInsight is the market/customer analysis.
type MarketInsight struct {
	Changes         []MarketChange    `json:"changes"`
	Segments        []SegmentAnalysis `json:"segments"`
	MarketGrowthPct *float64          `json:"market_growth_pct,omitempty"`
	Narrative       string            `json:"narrative,omitempty"`
	Sources         []SourceReference `json:"sources,omitempty"`
}

// ForceLevel grades a Porter force.
type ForceLevel string

const (
	ForceHigh   ForceLevel = "high"
	ForceMedium ForceLevel = "medium"
	ForceLow    ForceLevel = "low"
)

// PorterForce is one of the five forces with its assessed level.
type PorterForce struct {
	Force     string     `json:"force"`
	Level     ForceLevel `json:"level"`
	Rationale string     `json:"rationale,omitempty"`
}

// CompetitorWeakness is a weakness of a competitor.
type CompetitorWeakness struct {
	Description string        `json:"description"`
	Severity    EventSeverity `json:"severity"`
}

// CompetitorProfile is a deep-dive on one competitor.
type CompetitorProfile struct {
	OperatorID       string               `json:"operator_id"`
	Name             string               `json:"name"`
	Revenue          *float64             `json:"revenue,omitempty"`
	RevenueGrowthPct *float64             `json:"revenue_growth_pct,omitempty"`
	SharePct         *float64             `json:"share_pct,omitempty"`
	Strengths        []string             `json:"strengths,omitempty"`
	Weaknesses       []CompetitorWeakness `json:"weaknesses,omitempty"`
	SourceID         string               `json:"source_id,omitempty"`
}

// OperatorComparison is one row of the revenue/share comparison table.
type OperatorComparison struct {
	OperatorID string   `json:"operator_id"`
	Name       string   `json:"name"`
	Revenue    *float64 `json:"revenue,omitempty"`
	SharePct   *float64 `json:"share_pct,omitempty"`
	SourceID   string   `json:"source_id,omitempty"`
}

// PerceptionDimension is one customer-perception dimension scored per operator.
type PerceptionDimension struct {
	Dimension string             `json:"dimension"`
	Scores    map[string]float64 `json:"scores"`
}

// CompetitionInsight is the competitive analysis.
type CompetitionInsight struct {
	Forces           []PorterForce         `json:"forces"`
	Competitors      []CompetitorProfile   `json:"competitors"`
	Comparison       []OperatorComparison  `json:"comparison,omitempty"`
	Perception       []PerceptionDimension `json:"perception,omitempty"`
	IntensitySignals []string              `json:"intensity_signals,omitempty"`
	Narrative        string                `json:"narrative,omitempty"`
	Sources          []SourceReference     `json:"sources,omitempty"`
}

// ExposurePoint is an area where the target is exposed, with its side effect.
type ExposurePoint struct {
	Area        string `json:"area"`
	Description string `json:"description,omitempty"`
	SideEffect  string `json:"side_effect,omitempty"`
}

// BMCBlock is one Business Model Canvas block.
type BMCBlock struct {
	Block   string `json:"block"`
	Summary string `json:"summary"`
}

// Financials are the target's headline metrics. Nil means not available.
type Financials struct {
	Revenue          *float64 `json:"revenue,omitempty"`
	RevenueGrowthPct *float64 `json:"revenue_growth_pct,omitempty"`
	EBITDAMarginPct  *float64 `json:"ebitda_margin_pct,omitempty"`
	ChurnPct         *float64 `json:"churn_pct,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	SourceID         string   `json:"source_id,omitempty"`
}

// SelfInsight is the target's capability self-analysis.
type SelfInsight struct {
	OperatorID       string            `json:"operator_id"`
	Name             string            `json:"name"`
	Strengths        []string          `json:"strengths"`
	Weaknesses       []string          `json:"weaknesses"`
	ExposurePoints   []ExposurePoint   `json:"exposure_points,omitempty"`
	BusinessModel    []BMCBlock        `json:"business_model,omitempty"`
	Financials       Financials        `json:"financials"`
	Health           HealthLevel       `json:"health,omitempty"`
	NetworkEvolution []string          `json:"network_evolution,omitempty"`
	Narrative        string            `json:"narrative,omitempty"`
	Sources          []SourceReference `json:"sources,omitempty"`
}

// TariffInsight is the best-effort tariff side-analysis.
type TariffInsight struct {
	Available         bool           `json:"available"`
	Period            string         `json:"period,omitempty"`
	PlanCount         int            `json:"plan_count"`
	MinPrice          float64        `json:"min_price,omitempty"`
	MedianPrice       float64        `json:"median_price,omitempty"`
	MaxPrice          float64        `json:"max_price,omitempty"`
	Currency          string         `json:"currency,omitempty"`
	CheapestOperator  string         `json:"cheapest_operator,omitempty"`
	PlansByOperator   map[string]int `json:"plans_by_operator,omitempty"`
	TargetMedianPrice float64        `json:"target_median_price,omitempty"`
	TargetPosition    string         `json:"target_position,omitempty"` // premium, mid, value
	Summary           string         `json:"summary"`
}

// UnavailableTariffs is the default used when the side-analysis fails.
func UnavailableTariffs() *TariffInsight {
	return &TariffInsight{Available: false, Summary: "Tariff analysis unavailable"}
}
