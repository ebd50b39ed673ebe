package diagnosis

import "strconv"

// facts are the inputs of the label cascade.
type facts struct {
	rank       int
	weaknesses int
	gap        float64
	wins       int
	declining  bool
}

type labelRule struct {
	matches func(f facts) bool
	label   func(f facts) string
}

func fixed(s string) func(facts) string { return func(facts) string { return s } }

// labelRules are evaluated in order; the first match wins.
var labelRules = []labelRule{
	{func(f facts) bool { return f.rank == 1 && f.weaknesses < 3 }, fixed("Dominant Leader")},
	{func(f facts) bool { return f.gap > 30 && f.wins == 0 }, func(f facts) string { return "Distant " + Ordinal(f.rank) }},
	{func(f facts) bool { return f.gap > 15 && f.wins == 0 }, fixed("Squeezed Middle")},
	{func(f facts) bool { return f.gap > 15 && f.declining }, fixed("Declining Incumbent")},
	{func(f facts) bool { return f.gap < 15 && f.wins >= 1 }, fixed("Competitive Challenger")},
	{func(f facts) bool { return f.rank == 1 }, fixed("Vulnerable Leader")},
	{func(facts) bool { return true }, fixed("Squeezed Middle")},
}

func classify(f facts) string {
	for _, r := range labelRules {
		if r.matches(f) {
			return r.label(f)
		}
	}
	return "Squeezed Middle"
}

var ordinalWords = []string{"First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth", "Tenth"}

// Ordinal spells out 1 through 10 and uses numeric suffixes above that.
func Ordinal(n int) string {
	if n >= 1 && n <= len(ordinalWords) {
		return ordinalWords[n-1]
	}
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// stance maps the SWOT balance onto one of four postures.
func stance(strengths, weaknesses, opportunities, threats int) string {
	strong, favourable := strengths >= weaknesses, opportunities >= threats
	switch {
	case strong && favourable:
		return "Offensive"
	case favourable:
		return "Turnaround"
	case strong:
		return "Defensive"
	default:
		return "Cautious"
	}
}
