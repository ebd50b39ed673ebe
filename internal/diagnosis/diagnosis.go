// Package diagnosis classifies the target's competitive situation from the
// assembled bundle.
package diagnosis

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Limits on the ranked lists a diagnosis carries.
const (
	maxPriorities = 5
	maxTraps      = 4
)

// Diagnose builds the strategic diagnosis for the bundle's target. When l is
// non-nil the rank, share and gap figures are tracked.
func Diagnose(b *model.Bundle, l *provenance.Ledger) *model.StrategicDiagnosis {
	target := b.OrgID
	if b.Self != nil && b.Self.OperatorID != "" {
		target = b.Self.OperatorID
	}

	rows := competitiveSet(target, b.Competition, b.Self)
	sorted, rank := rankByRevenue(target, rows)
	sh := shares(sorted)

	var targetShare, leaderShare float64
	for i, r := range sorted {
		if r.id == target {
			targetShare = sh[i]
		}
		leaderShare = math.Max(leaderShare, sh[i])
	}
	gap := 0.0
	if rank > 1 {
		gap = math.Max(0, leaderShare-targetShare)
	}

	var perception []model.PerceptionDimension
	if b.Competition != nil {
		perception = b.Competition.Perception
	}
	swot := b.SWOT
	if swot == nil {
		swot = &model.SWOTAnalysis{}
	}

	f := facts{
		rank:       rank,
		weaknesses: len(swot.Weaknesses),
		gap:        gap,
		wins:       appealsWins(target, perception),
		declining:  declining(b.Self),
	}

	sortedShares := slices.Clone(sh)
	slices.SortFunc(sortedShares, func(x, y float64) int { return cmp.Compare(y, x) })

	d := &model.StrategicDiagnosis{
		Rank:            rank,
		OperatorCount:   len(sorted),
		TargetSharePct:  round2(targetShare),
		LeaderSharePct:  round2(leaderShare),
		GapPP:           round2(gap),
		AppealsWins:     f.wins,
		Declining:       f.declining,
		MarketStructure: marketStructure(sortedShares),
		Stance:          stance(len(swot.Strengths), len(swot.Weaknesses), len(swot.Opportunities), len(swot.Threats)),
		Label:           classify(f),
	}
	d.Priorities = priorities(b.SPAN)
	d.ModuleAssessments = moduleAssessments(b)
	d.Traps = traps(d.Label, b.Market)
	d.Scenarios = scenarios(len(d.Priorities))
	d.KPIs = kpis(b.Self)
	d.Narrative = narrative(displayName(b.Self, target), d)

	if l != nil {
		period := b.EndPeriod
		l.Track(rank, "revenue_rank",
			provenance.WithOperator(target),
			provenance.WithPeriod(period),
			provenance.WithDerivation("position of target in revenue-descending operator list", "revenue"),
		)
		l.Track(d.TargetSharePct, "target_share",
			provenance.WithOperator(target),
			provenance.WithPeriod(period),
			provenance.WithUnit("%"),
			provenance.WithDerivation("market_share or revenue / sum(revenue) * 100", "market_share", "revenue"),
		)
		l.Track(d.GapPP, "share_gap",
			provenance.WithOperator(target),
			provenance.WithPeriod(period),
			provenance.WithUnit("pp"),
			provenance.WithDerivation("leader_share - target_share", "leader_share", "target_share"),
		)
	}
	return d
}

// priorities returns the top opportunities by tier, then name.
func priorities(span *model.SPANResult) []model.OpportunityItem {
	if span == nil {
		return []model.OpportunityItem{}
	}
	items := slices.Clone(span.Opportunities)
	slices.SortStableFunc(items, func(a, b model.OpportunityItem) int {
		return cmp.Or(cmp.Compare(a.Priority.Rank(), b.Priority.Rank()), cmp.Compare(a.Name, b.Name))
	})
	if len(items) > maxPriorities {
		items = items[:maxPriorities]
	}
	if items == nil {
		items = []model.OpportunityItem{}
	}
	return items
}

func moduleAssessments(b *model.Bundle) []model.ModuleAssessment {
	out := make([]model.ModuleAssessment, 0, 5)

	if t := b.Trends; t != nil {
		out = append(out, model.ModuleAssessment{Module: "trends", Assessment: fmt.Sprintf(
			"%d policy opportunities against %d policy threats; %d technology trends tracked",
			len(t.PolicyOpportunities), len(t.PolicyThreats), len(t.Technologies))})
	}

	if m := b.Market; m != nil {
		growth := "market growth not available"
		if m.MarketGrowthPct != nil {
			growth = fmt.Sprintf("market growing at %.1f%%", *m.MarketGrowthPct)
		}
		var critical int
		for _, s := range m.Segments {
			if s.Health == model.HealthCritical {
				critical++
			}
		}
		out = append(out, model.ModuleAssessment{Module: "market", Assessment: fmt.Sprintf(
			"%s; %d segments analysed, %d critical", capitalize(growth), len(m.Segments), critical)})
	}

	if c := b.Competition; c != nil {
		var high int
		for _, f := range c.Forces {
			if f.Level == model.ForceHigh {
				high++
			}
		}
		out = append(out, model.ModuleAssessment{Module: "competition", Assessment: fmt.Sprintf(
			"%d of %d forces at high intensity; %d competitors profiled", high, len(c.Forces), len(c.Competitors))})
	}

	if s := b.Self; s != nil {
		health := string(s.Health)
		if health == "" {
			health = "unassessed"
		}
		out = append(out, model.ModuleAssessment{Module: "self", Assessment: fmt.Sprintf(
			"%d strengths against %d weaknesses; overall health %s", len(s.Strengths), len(s.Weaknesses), health)})
	}

	if t := b.Tariffs; t != nil {
		out = append(out, model.ModuleAssessment{Module: "tariffs", Assessment: t.Summary})
	}
	return out
}

var labelTraps = []struct {
	prefix string
	trap   model.Trap
}{
	{"Dominant Leader", model.Trap{
		Name:       "Complacency",
		Temptation: "Protect current margins and slow network investment",
		Reality:    "Leaders lose share when challengers out-invest them on the next technology cycle",
	}},
	{"Vulnerable Leader", model.Trap{
		Name:       "Fortress mentality",
		Temptation: "Defend every segment at any cost",
		Reality:    "Spreading defence across all segments leaves the profitable core underfunded",
	}},
	{"Distant ", model.Trap{
		Name:       "Head-on price war",
		Temptation: "Undercut the leader to buy share quickly",
		Reality:    "A distant player cannot outspend the leader; margins collapse before share moves",
	}},
	{"Squeezed Middle", model.Trap{
		Name:       "Stuck in the middle",
		Temptation: "Serve every segment with a generic offer",
		Reality:    "Without a clear cost or differentiation edge, share erodes from both ends",
	}},
	{"Squeezed Middle", model.Trap{
		Name:       "Copying the leader",
		Temptation: "Match the leader's portfolio feature for feature",
		Reality:    "Imitation confirms the leader's position and gives customers no reason to switch",
	}},
	{"Declining Incumbent", model.Trap{
		Name:       "Cutting into decline",
		Temptation: "Restore margins through across-the-board cost cuts",
		Reality:    "Cuts that hit network quality and service accelerate churn",
	}},
	{"Competitive Challenger", model.Trap{
		Name:       "Overextension",
		Temptation: "Attack the leader on every front at once",
		Reality:    "Challengers win by concentrating on the dimensions where they already lead",
	}},
}

// traps matches fixed templates on the label, then adds one per critical
// segment, capped at maxTraps.
func traps(label string, m *model.MarketInsight) []model.Trap {
	out := []model.Trap{}
	for _, lt := range labelTraps {
		if strings.HasPrefix(label, lt.prefix) {
			out = append(out, lt.trap)
		}
	}
	if m != nil {
		for _, s := range m.Segments {
			if s.Health != model.HealthCritical {
				continue
			}
			out = append(out, model.Trap{
				Name:       "Propping up " + s.Name,
				Temptation: "Keep funding the " + s.Name + " segment until it recovers",
				Reality:    "A critical segment needs an explicit fix-or-exit decision with a deadline",
			})
		}
	}
	if len(out) > maxTraps {
		out = out[:maxTraps]
	}
	return out
}

// scenarios are illustrative ranges scaled by the number of priorities.
func scenarios(n int) []model.Scenario {
	return []model.Scenario{
		{
			Name:         "bull",
			RevenueRange: fmt.Sprintf("+%d%% to +%d%%", 4+n, 8+n),
			Assumption:   "Priority opportunities delivered on schedule and competitors slow to respond",
		},
		{
			Name:         "base",
			RevenueRange: fmt.Sprintf("+1%% to +%d%%", 2+(n+1)/2),
			Assumption:   "About half of the priorities delivered; market conditions unchanged",
		},
		{
			Name:         "bear",
			RevenueRange: "-4% to -1%",
			Assumption:   "Competitive pressure intensifies and execution slips",
		},
	}
}

// kpis emits one row per available metric with three escalating targets.
func kpis(self *model.SelfInsight) []model.KPITarget {
	out := []model.KPITarget{}
	if self == nil {
		return out
	}
	fin := self.Financials
	for _, k := range []struct {
		metric string
		value  *float64
		step   float64
	}{
		{"revenue_growth", fin.RevenueGrowthPct, 1},
		{"ebitda_margin", fin.EBITDAMarginPct, 1},
		{"churn", fin.ChurnPct, -0.2},
	} {
		if k.value == nil {
			continue
		}
		cur := *k.value
		out = append(out, model.KPITarget{
			Metric:  k.metric,
			Unit:    "%",
			Current: round2(cur),
			Targets: [3]float64{round2(cur + k.step), round2(cur + 2*k.step), round2(cur + 3*k.step)},
		})
	}
	return out
}

func narrative(name string, d *model.StrategicDiagnosis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ranks %s of %d operators by revenue", name, Ordinal(d.Rank), d.OperatorCount)
	if d.TargetSharePct > 0 {
		fmt.Fprintf(&b, " with %.1f%% share", d.TargetSharePct)
	}
	if d.GapPP > 0 {
		fmt.Fprintf(&b, ", %.1fpp behind the leader", d.GapPP)
	}
	fmt.Fprintf(&b, ". Market structure: %s. Diagnosis: %s (%s stance)", d.MarketStructure, d.Label, strings.ToLower(d.Stance))
	b.WriteString(".")
	if d.Declining {
		b.WriteString(" Revenue is declining.")
	}
	if d.AppealsWins > 0 {
		fmt.Fprintf(&b, " Customers rate it ahead of every rival on %d dimension(s).", d.AppealsWins)
	}
	return b.String()
}

func displayName(self *model.SelfInsight, fallback string) string {
	if self != nil && self.Name != "" {
		return self.Name
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
