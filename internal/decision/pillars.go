package decision

import (
	"fmt"
	"strings"

	"github.com/sells-group/strategy-cli/internal/model"
)

// buildPillars always returns the Growth, Competitive, Transformation and
// Customer pillars in that order.
func buildPillars(s situation) []model.Pillar {
	return []model.Pillar{
		growthPillar(s),
		competitivePillar(s),
		transformationPillar(s),
		customerPillar(s),
	}
}

func growthPillar(s situation) model.Pillar {
	p := model.Pillar{
		Area:     "Growth",
		Priority: model.PriorityP0,
		KPIs: []string{s.kpiTarget("revenue_growth",
			"Revenue growth from %.1f%% to %.1f%%", "Revenue growth ahead of market")},
	}
	switch {
	case s.leader():
		p.Name = "Extend Market Leadership"
		p.Statement = "Grow faster than the market in the segments the leader position already protects"
	case s.diagnosis.Stance == "Offensive" || s.diagnosis.Stance == "Turnaround":
		p.Name = "Accelerate Share Capture"
		p.Statement = "Convert favourable market conditions into share gains against the leader"
	default:
		p.Name = "Defend Core Revenue"
		p.Statement = "Protect the revenue base before funding expansion"
	}
	if len(s.priorities) > 0 {
		p.Statement += "; lead with " + s.priorities[0].Name
	}
	return p
}

type competitiveRule struct {
	prefix    string
	name      string
	statement string
}

// competitiveRules are matched by label prefix; the first match wins.
var competitiveRules = []competitiveRule{
	{"Dominant Leader", "Raise Barriers to Entry", "Use scale to lock in network and distribution advantages"},
	{"Vulnerable Leader", "Close Vulnerability Gaps", "Fix the weaknesses challengers are most likely to attack"},
	{"Distant ", "Win a Defensible Niche", "Concentrate on segments where the leader's scale matters least"},
	{"Competitive Challenger", "Double Down on Winning Dimensions", "Attack where customers already rate the offer ahead of rivals"},
	{"Declining Incumbent", "Stabilize Competitive Position", "Stop share loss before investing in new battles"},
	{"Squeezed Middle", "Sharpen Differentiation", "Pick a clear value or premium position and exit the generic middle"},
}

func competitivePillar(s situation) model.Pillar {
	p := model.Pillar{
		Area:     "Competitive",
		Priority: model.PriorityP1,
		KPIs:     []string{fmt.Sprintf("Share gap to leader below %.1fpp", gapTarget(s.diagnosis.GapPP))},
	}
	if s.diagnosis.GapPP > 15 {
		p.Priority = model.PriorityP0
	}
	if s.leader() {
		p.KPIs = []string{fmt.Sprintf("Market share at or above %.1f%%", s.diagnosis.TargetSharePct)}
	}
	p.Name, p.Statement = "Sharpen Differentiation", "Build a position customers can name"
	for _, r := range competitiveRules {
		if strings.HasPrefix(s.diagnosis.Label, r.prefix) {
			p.Name, p.Statement = r.name, r.statement
			break
		}
	}
	return p
}

// gapTarget halves the distance to the leader, rounded to one decimal.
func gapTarget(gap float64) float64 {
	return float64(int(gap/2*10)) / 10
}

func transformationPillar(s situation) model.Pillar {
	p := model.Pillar{Area: "Transformation", Priority: model.PriorityP1}
	switch {
	case len(s.networkTech) > 0:
		tech := strings.Join(s.networkTech, " and ")
		p.Name = "Lead on " + tech
		p.Statement = "Turn the " + tech + " programme into a visible customer advantage"
		p.KPIs = []string{tech + " coverage and adoption milestones met"}
	case s.weaknesses >= 3:
		p.Name = "Fix the Operating Model"
		p.Statement = "Address the structural weaknesses holding back execution"
		p.Priority = model.PriorityP0
		p.KPIs = []string{fmt.Sprintf("%d identified weaknesses with closed action plans", s.weaknesses)}
	default:
		p.Name = "Modernize Operations"
		p.Statement = "Digitize sales and service journeys to lower cost to serve"
		p.KPIs = []string{"Digital share of sales and service interactions"}
	}
	if _, ok := s.kpis["ebitda_margin"]; ok {
		p.KPIs = append(p.KPIs, s.kpiTarget("ebitda_margin", "EBITDA margin from %.1f%% to %.1f%%", ""))
	}
	return p
}

func customerPillar(s situation) model.Pillar {
	p := model.Pillar{
		Area:     "Customer",
		Priority: model.PriorityP1,
		KPIs:     []string{s.kpiTarget("churn", "Churn from %.2f%% to %.2f%%", "Net promoter score above market average")},
	}
	if len(s.urgentSegments) > 0 {
		p.Name = "Stop Churn in " + strings.Join(s.urgentSegments, " and ")
		p.Statement = "Stabilize flagged segments with targeted retention offers"
		p.Priority = model.PriorityP0
		return p
	}
	p.Name = "Deepen Customer Loyalty"
	p.Statement = "Raise lifetime value through bundles and service quality"
	return p
}
