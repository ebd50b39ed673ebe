package diagnosis

import (
	"cmp"
	"slices"

	"github.com/sells-group/strategy-cli/internal/model"
)

type operatorRow struct {
	id      string
	name    string
	revenue float64
	share   *float64
}

// competitiveSet lists operators in source order. The comparison table is
// used when it carries any revenue; otherwise competitor profiles plus the
// target's own financials. The target is appended last when absent.
func competitiveSet(target string, comp *model.CompetitionInsight, self *model.SelfInsight) []operatorRow {
	var rows []operatorRow
	if comp != nil && hasRevenue(comp.Comparison) {
		for _, c := range comp.Comparison {
			rows = append(rows, operatorRow{id: c.OperatorID, name: c.Name, revenue: deref(c.Revenue), share: c.SharePct})
		}
	} else if comp != nil {
		for _, c := range comp.Competitors {
			if c.OperatorID == target {
				continue
			}
			rows = append(rows, operatorRow{id: c.OperatorID, name: c.Name, revenue: deref(c.Revenue), share: c.SharePct})
		}
	}

	if !slices.ContainsFunc(rows, func(r operatorRow) bool { return r.id == target }) {
		row := operatorRow{id: target}
		if self != nil {
			row.name = self.Name
			row.revenue = deref(self.Financials.Revenue)
		}
		rows = append(rows, row)
	}
	return rows
}

func hasRevenue(rows []model.OperatorComparison) bool {
	return slices.ContainsFunc(rows, func(r model.OperatorComparison) bool { return r.Revenue != nil })
}

// rankByRevenue sorts rows by revenue descending, keeping source order on
// ties, and returns the target's 1-based rank.
func rankByRevenue(target string, rows []operatorRow) ([]operatorRow, int) {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b operatorRow) int { return cmp.Compare(b.revenue, a.revenue) })
	for i, r := range sorted {
		if r.id == target {
			return sorted, i + 1
		}
	}
	return sorted, len(sorted)
}

// shares returns each row's market share in percent, from the share table
// where present and from normalized revenue otherwise.
func shares(rows []operatorRow) []float64 {
	var total float64
	for _, r := range rows {
		total += r.revenue
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		switch {
		case r.share != nil:
			out[i] = *r.share
		case total > 0:
			out[i] = r.revenue / total * 100
		}
	}
	return out
}

// marketStructure classifies concentration from shares sorted descending.
func marketStructure(sorted []float64) string {
	var sum float64
	for _, s := range sorted {
		sum += s
	}
	if len(sorted) == 0 || sum <= 0 {
		return "Unknown"
	}
	top := func(n int) float64 {
		var t float64
		for i := 0; i < n && i < len(sorted); i++ {
			t += sorted[i]
		}
		return t
	}
	switch {
	case sorted[0] >= 50:
		return "Dominant Firm"
	case top(2) >= 70:
		return "Duopoly"
	case top(4) >= 60:
		return "Oligopoly"
	default:
		return "Fragmented"
	}
}

// appealsWins counts perception dimensions where the target strictly beats
// the best-scoring competitor.
func appealsWins(target string, dims []model.PerceptionDimension) int {
	var wins int
	for _, d := range dims {
		own, ok := d.Scores[target]
		if !ok {
			continue
		}
		best, rivals := 0.0, 0
		for id, s := range d.Scores {
			if id == target {
				continue
			}
			if rivals == 0 || s > best {
				best = s
			}
			rivals++
		}
		if rivals > 0 && own > best {
			wins++
		}
	}
	return wins
}

// declining uses reported growth when known and qualitative health otherwise.
func declining(self *model.SelfInsight) bool {
	if self == nil {
		return false
	}
	if g := self.Financials.RevenueGrowthPct; g != nil {
		return *g < -1.0
	}
	return self.Health == model.HealthConcerning || self.Health == model.HealthCritical
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
