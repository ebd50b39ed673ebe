package model

// SWOTAnalysis is the four-quadrant matrix with its paired strategies.
type SWOTAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
	SO            []string `json:"so_strategies"`
	WO            []string `json:"wo_strategies"`
	ST            []string `json:"st_strategies"`
	WT            []string `json:"wt_strategies"`
	Summary       string   `json:"summary"`
}

// Quadrant is a SPAN matrix cell.
type Quadrant string

const (
	QuadrantGrowInvest    Quadrant = "grow_invest"
	QuadrantAcquireSkills Quadrant = "acquire_skills"
	QuadrantHarvest       Quadrant = "harvest"
	QuadrantAvoidExit     Quadrant = "avoid_exit"
)

// PriorityTier orders opportunities and tasks; P0 is most urgent.
type PriorityTier string

const (
	PriorityP0 PriorityTier = "P0"
	PriorityP1 PriorityTier = "P1"
	PriorityP2 PriorityTier = "P2"
)

// Rank returns 0 for P0, 1 for P1, 2 for P2 and 3 for anything else.
func (p PriorityTier) Rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	default:
		return 3
	}
}

// AttractivenessScores are the market-attractiveness sub-scores, each in [1,10].
type AttractivenessScores struct {
	Size           float64 `json:"size"`
	Growth         float64 `json:"growth"`
	Profit         float64 `json:"profit"`
	StrategicValue float64 `json:"strategic_value"`
}

// PositionScores are the competitive-position sub-scores, each in [1,10].
type PositionScores struct {
	Share float64 `json:"share"`
	Fit   float64 `json:"fit"`
	Brand float64 `json:"brand"`
	Tech  float64 `json:"tech"`
}

// SPANPosition is one scored opportunity on the SPAN matrix.
type SPANPosition struct {
	Name                 string               `json:"name"`
	Attractiveness       AttractivenessScores `json:"attractiveness"`
	MarketAttractiveness float64              `json:"market_attractiveness"`
	Position             PositionScores       `json:"position"`
	CompetitivePosition  float64              `json:"competitive_position"`
	Quadrant             Quadrant             `json:"quadrant"`
	RecommendedStrategy  string               `json:"recommended_strategy"`
	BubbleSize           float64              `json:"bubble_size"`
	Origin               string               `json:"origin"`
}

// NotAvailable is the only addressable-market value the scorer may emit.
const NotAvailable = "N/A"

// OpportunityItem is a prioritized opportunity derived from a SPAN position.
type OpportunityItem struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	ProvenanceTags    []string     `json:"provenance_tags"`
	AddressableMarket string       `json:"addressable_market"`
	Capability        string       `json:"capability"`
	Competition       string       `json:"competition"`
	Timing            string       `json:"timing"`
	Priority          PriorityTier `json:"priority"`
	PriorityRationale string       `json:"priority_rationale"`
	Quadrant          Quadrant     `json:"quadrant"`
}

// QuadrantGroups lists opportunity names per SPAN quadrant.
type QuadrantGroups struct {
	GrowInvest    []string `json:"grow_invest"`
	AcquireSkills []string `json:"acquire_skills"`
	Harvest       []string `json:"harvest"`
	AvoidExit     []string `json:"avoid_exit"`
}

// All returns every grouped name in quadrant order.
func (g QuadrantGroups) All() []string {
	out := make([]string, 0, len(g.GrowInvest)+len(g.AcquireSkills)+len(g.Harvest)+len(g.AvoidExit))
	out = append(out, g.GrowInvest...)
	out = append(out, g.AcquireSkills...)
	out = append(out, g.Harvest...)
	return append(out, g.AvoidExit...)
}

// SPANResult is the Opportunity Scorer output.
type SPANResult struct {
	Positions     []SPANPosition    `json:"positions"`
	Opportunities []OpportunityItem `json:"opportunities"`
	Quadrants     QuadrantGroups    `json:"quadrants"`
	Summary       string            `json:"summary"`
}
