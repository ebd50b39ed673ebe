package span

import (
	"fmt"
	"math"

	"github.com/sells-group/strategy-cli/internal/config"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Sub-score bounds.
const (
	minScore = 1.0
	maxScore = 10.0
)

// Inputs are everything the scorer extracts candidates from.
type Inputs struct {
	OrgID       string
	SWOT        *model.SWOTAnalysis
	Trends      *model.TrendsInsight
	Market      *model.MarketInsight
	Competition *model.CompetitionInsight
	Self        *model.SelfInsight
}

// Scorer builds SPAN results with a fixed weight configuration.
type Scorer struct {
	cfg config.SPANConfig
}

// New validates cfg and returns a Scorer.
func New(cfg config.SPANConfig) (*Scorer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

type quadrantRule struct {
	matches  func(highAttr, highPos bool) bool
	quadrant model.Quadrant
	priority model.PriorityTier
	strategy string
}

// quadrantRules are evaluated in order; the first match wins.
var quadrantRules = []quadrantRule{
	{
		matches:  func(a, p bool) bool { return a && p },
		quadrant: model.QuadrantGrowInvest,
		priority: model.PriorityP0,
		strategy: "Invest to grow: commit resources and build a leading position",
	},
	{
		matches:  func(a, p bool) bool { return a && !p },
		quadrant: model.QuadrantAcquireSkills,
		priority: model.PriorityP1,
		strategy: "Acquire skills: build or buy the capabilities needed before scaling",
	},
	{
		matches:  func(a, p bool) bool { return !a && p },
		quadrant: model.QuadrantHarvest,
		priority: model.PriorityP1,
		strategy: "Harvest: maximise returns from the existing position with limited new investment",
	},
	{
		matches:  func(bool, bool) bool { return true },
		quadrant: model.QuadrantAvoidExit,
		priority: model.PriorityP2,
		strategy: "Avoid or exit: deprioritise and redeploy resources",
	},
}

func (s *Scorer) classify(attr, pos float64) quadrantRule {
	highAttr, highPos := attr >= s.cfg.Threshold, pos >= s.cfg.Threshold
	for _, r := range quadrantRules {
		if r.matches(highAttr, highPos) {
			return r
		}
	}
	return quadrantRules[len(quadrantRules)-1]
}

// Evaluate scores one opportunity from its sub-scores. Sub-scores are
// clamped to [1,10] before weighting.
func (s *Scorer) Evaluate(name string, attr model.AttractivenessScores, pos model.PositionScores) model.SPANPosition {
	attr = model.AttractivenessScores{
		Size:           clamp(attr.Size),
		Growth:         clamp(attr.Growth),
		Profit:         clamp(attr.Profit),
		StrategicValue: clamp(attr.StrategicValue),
	}
	pos = model.PositionScores{
		Share: clamp(pos.Share),
		Fit:   clamp(pos.Fit),
		Brand: clamp(pos.Brand),
		Tech:  clamp(pos.Tech),
	}

	ma := clamp(round2(s.cfg.SizeWeight*attr.Size + s.cfg.GrowthWeight*attr.Growth +
		s.cfg.ProfitWeight*attr.Profit + s.cfg.StrategicWeight*attr.StrategicValue))
	cp := clamp(round2(s.cfg.ShareWeight*pos.Share + s.cfg.FitWeight*pos.Fit +
		s.cfg.BrandWeight*pos.Brand + s.cfg.TechWeight*pos.Tech))

	rule := s.classify(ma, cp)
	return model.SPANPosition{
		Name:                 name,
		Attractiveness:       attr,
		MarketAttractiveness: ma,
		Position:             pos,
		CompetitivePosition:  cp,
		Quadrant:             rule.quadrant,
		RecommendedStrategy:  rule.strategy,
		BubbleSize:           attr.Size,
	}
}

// PriorityFor returns the priority tier of a quadrant.
func PriorityFor(q model.Quadrant) model.PriorityTier {
	for _, r := range quadrantRules {
		if r.quadrant == q {
			return r.priority
		}
	}
	return model.PriorityP2
}

// Score extracts, deduplicates and scores every candidate. When l is non-nil
// each composite is tracked with its derivation.
func (s *Scorer) Score(in Inputs, l *provenance.Ledger) *model.SPANResult {
	ts := targetSeeds(in)

	seen := make(map[string]bool)
	var cands []candidate
	for _, extract := range extractors {
		for _, c := range extract(in, s.cfg.MaxCompetitorWeaknesses) {
			key := nameKey(c.name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			ts.apply(&c)
			cands = append(cands, c)
		}
	}

	res := &model.SPANResult{
		Positions:     make([]model.SPANPosition, 0, len(cands)),
		Opportunities: make([]model.OpportunityItem, 0, len(cands)),
		Quadrants: model.QuadrantGroups{
			GrowInvest:    []string{},
			AcquireSkills: []string{},
			Harvest:       []string{},
			AvoidExit:     []string{},
		},
	}
	for _, c := range cands {
		p := s.Evaluate(c.name, c.attr, c.pos)
		p.Origin = c.origin
		res.Positions = append(res.Positions, p)
		res.Opportunities = append(res.Opportunities, opportunity(c, p))

		switch p.Quadrant {
		case model.QuadrantGrowInvest:
			res.Quadrants.GrowInvest = append(res.Quadrants.GrowInvest, p.Name)
		case model.QuadrantAcquireSkills:
			res.Quadrants.AcquireSkills = append(res.Quadrants.AcquireSkills, p.Name)
		case model.QuadrantHarvest:
			res.Quadrants.Harvest = append(res.Quadrants.Harvest, p.Name)
		default:
			res.Quadrants.AvoidExit = append(res.Quadrants.AvoidExit, p.Name)
		}

		if l != nil {
			s.track(l, in.OrgID, p)
		}
	}
	res.Summary = summarize(res.Quadrants)
	return res
}

func (s *Scorer) track(l *provenance.Ledger, orgID string, p model.SPANPosition) {
	l.Track(p.MarketAttractiveness, "span_market_attractiveness",
		provenance.WithOperator(orgID),
		provenance.WithUnit("score"),
		provenance.WithRawText(p.Name),
		provenance.WithDerivation(fmt.Sprintf("%.2f*size + %.2f*growth + %.2f*profit + %.2f*strategic_value",
			s.cfg.SizeWeight, s.cfg.GrowthWeight, s.cfg.ProfitWeight, s.cfg.StrategicWeight),
			"size", "growth", "profit", "strategic_value"),
	)
	l.Track(p.CompetitivePosition, "span_competitive_position",
		provenance.WithOperator(orgID),
		provenance.WithUnit("score"),
		provenance.WithRawText(p.Name),
		provenance.WithDerivation(fmt.Sprintf("%.2f*share + %.2f*fit + %.2f*brand + %.2f*tech",
			s.cfg.ShareWeight, s.cfg.FitWeight, s.cfg.BrandWeight, s.cfg.TechWeight),
			"share", "fit", "brand", "tech"),
	)
}

func opportunity(c candidate, p model.SPANPosition) model.OpportunityItem {
	rationale := fmt.Sprintf("%s quadrant (attractiveness %.1f, position %.1f)",
		p.Quadrant, p.MarketAttractiveness, p.CompetitivePosition)
	return model.OpportunityItem{
		Name:              p.Name,
		Description:       c.description,
		ProvenanceTags:    c.tags,
		AddressableMarket: model.NotAvailable,
		Capability:        capability(p.CompetitivePosition),
		Competition:       competition(c.origin, p.Position.Share),
		Timing:            timing(p.Attractiveness.Growth),
		Priority:          PriorityFor(p.Quadrant),
		PriorityRationale: rationale,
		Quadrant:          p.Quadrant,
	}
}

func capability(position float64) string {
	switch {
	case position >= 7:
		return "Strong: existing capabilities cover the play"
	case position >= 5:
		return "Adequate: targeted investment required"
	default:
		return "Gap: capabilities must be built or acquired"
	}
}

func competition(origin string, share float64) string {
	switch {
	case origin == OriginCompetitorWeakness:
		return "Favourable: a competitor is exposed"
	case share >= 7:
		return "Favourable: strong share position"
	case share >= 5:
		return "Contested: share is in line with rivals"
	default:
		return "Intense: rivals hold stronger share"
	}
}

func timing(growth float64) string {
	switch {
	case growth >= 7:
		return "Now: window is open"
	case growth >= 5:
		return "Next 12-24 months"
	default:
		return "Opportunistic"
	}
}

func summarize(g model.QuadrantGroups) string {
	total := len(g.All())
	if total == 0 {
		return "No opportunities identified"
	}
	return fmt.Sprintf("%d opportunities: %d grow_invest, %d acquire_skills, %d harvest, %d avoid_exit",
		total, len(g.GrowInvest), len(g.AcquireSkills), len(g.Harvest), len(g.AvoidExit))
}

// seeds are target-level sub-scores applied to every candidate.
type seeds struct {
	share  *float64
	profit *float64
}

func targetSeeds(in Inputs) seeds {
	var out seeds
	target := in.OrgID
	if in.Self != nil {
		if in.Self.OperatorID != "" {
			target = in.Self.OperatorID
		}
		if m := in.Self.Financials.EBITDAMarginPct; m != nil {
			v := clamp(*m / 5)
			out.profit = &v
		}
	}
	if in.Competition != nil {
		for _, row := range in.Competition.Comparison {
			if row.OperatorID == target && row.SharePct != nil {
				v := clamp(*row.SharePct / 5)
				out.share = &v
				break
			}
		}
	}
	return out
}

func (s seeds) apply(c *candidate) {
	if s.share != nil {
		c.pos.Share = *s.share
	}
	if s.profit != nil {
		c.attr.Profit = *s.profit
	}
}

func clamp(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
