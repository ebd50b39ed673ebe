package decision

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/strategy-cli/internal/model"
)

// networkKeywords map lowercase markers in the network-evolution notes to
// their display form, in match order.
var networkKeywords = []struct {
	marker  string
	display string
}{
	{"5g", "5G"},
	{"ftth", "FTTH"},
	{"fiber", "Fiber"},
	{"fibre", "Fiber"},
	{"cloud", "Cloud"},
}

// situation is the subset of the bundle and diagnosis the rules read.
type situation struct {
	diagnosis      *model.StrategicDiagnosis
	weaknesses     int
	urgentSegments []string
	networkTech    []string
	ebitdaMargin   *float64
	priorities     []model.OpportunityItem
	kpis           map[string]model.KPITarget
}

var title = cases.Title(language.English)

func newSituation(b *model.Bundle, d *model.StrategicDiagnosis) situation {
	s := situation{
		diagnosis:  d,
		priorities: d.Priorities,
		kpis:       make(map[string]model.KPITarget, len(d.KPIs)),
	}
	for _, k := range d.KPIs {
		s.kpis[k.Metric] = k
	}
	if b.SWOT != nil {
		s.weaknesses = len(b.SWOT.Weaknesses)
	}
	if b.Market != nil {
		for _, seg := range b.Market.Segments {
			if strings.Contains(strings.ToUpper(seg.Flag), "URGENT") {
				s.urgentSegments = append(s.urgentSegments, title.String(seg.Name))
			}
		}
	}
	if b.Self != nil {
		s.ebitdaMargin = b.Self.Financials.EBITDAMarginPct
		s.networkTech = networkTech(b.Self.NetworkEvolution)
	}
	return s
}

func networkTech(notes []string) []string {
	text := strings.ToLower(strings.Join(notes, " "))
	var out []string
	for _, k := range networkKeywords {
		if strings.Contains(text, k.marker) && !slices.Contains(out, k.display) {
			out = append(out, k.display)
		}
	}
	return out
}

// kpiTarget renders the first escalation step of metric, or fallback.
func (s situation) kpiTarget(metric, format, fallback string) string {
	k, ok := s.kpis[metric]
	if !ok {
		return fallback
	}
	return fmt.Sprintf(format, k.Current, k.Targets[0])
}

func (s situation) leader() bool { return s.diagnosis.Rank == 1 }
