// Package swot turns the four domain insights into a SWOT matrix with
// paired SO/WO/ST/WT strategies.
package swot

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Pairing bounds for each strategy quadrant.
const (
	minStrategies = 2
	maxStrategies = 4
)

// InsufficientDataSummary is the summary emitted when every input list is empty.
const InsufficientDataSummary = "Insufficient data for SWOT synthesis"

// Inputs are the domain insights the bridge reads. Nil insights contribute
// nothing.
type Inputs struct {
	Trends      *model.TrendsInsight
	Market      *model.MarketInsight
	Competition *model.CompetitionInsight
	Self        *model.SelfInsight
}

// Pairing templates: internal factor first, external factor second.
const (
	soTemplate = "Use %s to capture %s"
	woTemplate = "Address %s to pursue %s"
	stTemplate = "Leverage %s to counter %s"
	wtTemplate = "Limit exposure where %s meets %s"
)

// Build derives the SWOT matrix. It is deterministic: identical inputs yield
// identical output. When l is non-nil the quadrant sizes are tracked.
func Build(in Inputs, l *provenance.Ledger) *model.SWOTAnalysis {
	out := &model.SWOTAnalysis{
		Strengths:     strengths(in.Self),
		Weaknesses:    weaknesses(in.Self),
		Opportunities: opportunities(in.Trends, in.Market),
		Threats:       threats(in.Trends, in.Market, in.Competition),
	}
	out.SO = pair(out.Strengths, out.Opportunities, soTemplate)
	out.WO = pair(out.Weaknesses, out.Opportunities, woTemplate)
	out.ST = pair(out.Strengths, out.Threats, stTemplate)
	out.WT = pair(out.Weaknesses, out.Threats, wtTemplate)
	out.Summary = summary(out)

	if l != nil {
		for _, q := range []struct {
			field string
			n     int
		}{
			{"swot_strengths", len(out.Strengths)},
			{"swot_weaknesses", len(out.Weaknesses)},
			{"swot_opportunities", len(out.Opportunities)},
			{"swot_threats", len(out.Threats)},
		} {
			l.Track(q.n, q.field, provenance.WithUnit("items"), provenance.WithDerivation("count(quadrant inputs)"))
		}
	}
	return out
}

func strengths(self *model.SelfInsight) []string {
	if self == nil {
		return []string{}
	}
	return append([]string{}, self.Strengths...)
}

func weaknesses(self *model.SelfInsight) []string {
	if self == nil {
		return []string{}
	}
	items := append([]string(nil), self.Weaknesses...)
	for _, e := range self.ExposurePoints {
		if e.SideEffect != "" {
			items = append(items, e.SideEffect)
		}
	}
	return dedup(items)
}

func opportunities(trends *model.TrendsInsight, market *model.MarketInsight) []string {
	var items []string
	if trends != nil {
		items = append(items, trends.PolicyOpportunities...)
	}
	items = append(items, changes(market, model.ImpactOpportunity)...)
	return dedup(items)
}

func threats(trends *model.TrendsInsight, market *model.MarketInsight, comp *model.CompetitionInsight) []string {
	var items []string
	if trends != nil {
		items = append(items, trends.PolicyThreats...)
	}
	items = append(items, changes(market, model.ImpactThreat)...)
	if comp != nil {
		title := cases.Title(language.English)
		for _, f := range comp.Forces {
			if model.ForceLevel(strings.ToLower(strings.TrimSpace(string(f.Level)))) != model.ForceHigh {
				continue
			}
			items = append(items, fmt.Sprintf("High %s pressure", title.String(strings.TrimSpace(f.Force))))
		}
	}
	return dedup(items)
}

func changes(market *model.MarketInsight, kind model.Impact) []string {
	if market == nil {
		return nil
	}
	var out []string
	for _, c := range market.Changes {
		if c.Kind == kind {
			out = append(out, c.Description)
		}
	}
	return out
}

// dedup drops exact repeats, keeping first occurrences.
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// pair cycles through both lists, wrapping the shorter one. Either list empty
// yields an empty result. Two single-item lists yield one sentence since
// there is only one distinct pair.
func pair(a, b []string, format string) []string {
	if len(a) == 0 || len(b) == 0 {
		return []string{}
	}
	n := min(max(len(a), len(b), minStrategies), maxStrategies, len(a)*len(b))
	out := make([]string, 0, n)
	for i := range n {
		out = append(out, fmt.Sprintf(format, a[i%len(a)], b[i%len(b)]))
	}
	return out
}

func summary(s *model.SWOTAnalysis) string {
	ns, nw, no, nt := len(s.Strengths), len(s.Weaknesses), len(s.Opportunities), len(s.Threats)
	if ns+nw+no+nt == 0 {
		return InsufficientDataSummary
	}

	var posture string
	switch strong, favourable := ns >= nw, no >= nt; {
	case strong && favourable:
		posture = "Strong position in a favourable market: press the advantage"
	case strong:
		posture = "Strong position in a hostile market: defend and diversify"
	case favourable:
		posture = "Weak position in a favourable market: close gaps to capture upside"
	default:
		posture = "Weak position in a hostile market: protect the core"
	}
	return fmt.Sprintf("%s (S=%d, W=%d, O=%d, T=%d)", posture, ns, nw, no, nt)
}
