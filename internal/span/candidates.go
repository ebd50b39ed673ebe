package span

import (
	"fmt"
	"strings"

	"github.com/sells-group/strategy-cli/internal/model"
)

// Candidate origins, also used as provenance tags.
const (
	OriginSO                 = "swot:so"
	OriginWO                 = "swot:wo"
	OriginMarketChange       = "market:change"
	OriginTechnology         = "trends:technology"
	OriginPolicy             = "trends:policy"
	OriginCompetitorWeakness = "competition:weakness"
)

// defaultSubScore is used for every sub-dimension a candidate does not seed.
const defaultSubScore = 5.0

type candidate struct {
	name        string
	description string
	origin      string
	tags        []string
	attr        model.AttractivenessScores
	pos         model.PositionScores
}

func newCandidate(name, description, origin string, tags ...string) candidate {
	return candidate{
		name:        strings.TrimSpace(name),
		description: description,
		origin:      origin,
		tags:        append([]string{origin}, tags...),
		attr: model.AttractivenessScores{
			Size:           defaultSubScore,
			Growth:         defaultSubScore,
			Profit:         defaultSubScore,
			StrategicValue: defaultSubScore,
		},
		pos: model.PositionScores{
			Share: defaultSubScore,
			Fit:   defaultSubScore,
			Brand: defaultSubScore,
			Tech:  defaultSubScore,
		},
	}
}

// extractor yields candidates from one upstream source.
type extractor func(in Inputs, maxWeaknesses int) []candidate

// extractors run in this order; earlier candidates win name collisions.
var extractors = []extractor{
	fromSO,
	fromWO,
	fromMarketChanges,
	fromTechnologies,
	fromPolicy,
	fromCompetitorWeaknesses,
}

func fromSO(in Inputs, _ int) []candidate {
	if in.SWOT == nil {
		return nil
	}
	var out []candidate
	for _, s := range in.SWOT.SO {
		c := newCandidate(s, "Strength-led play on an external opportunity", OriginSO)
		c.attr.StrategicValue = 8
		c.pos.Fit = 7
		out = append(out, c)
	}
	return out
}

func fromWO(in Inputs, _ int) []candidate {
	if in.SWOT == nil {
		return nil
	}
	var out []candidate
	for _, s := range in.SWOT.WO {
		c := newCandidate(s, "Opportunity that requires closing an internal gap first", OriginWO)
		c.attr.StrategicValue = 6
		c.pos.Fit = 4
		out = append(out, c)
	}
	return out
}

func fromMarketChanges(in Inputs, _ int) []candidate {
	if in.Market == nil {
		return nil
	}
	var out []candidate
	for _, ch := range in.Market.Changes {
		if ch.Kind != model.ImpactOpportunity {
			continue
		}
		var tags []string
		if ch.SourceID != "" {
			tags = append(tags, "source:"+ch.SourceID)
		}
		desc := "Market shift"
		if ch.Area != "" {
			desc = "Market shift in " + ch.Area
		}
		c := newCandidate(ch.Description, desc, OriginMarketChange, tags...)
		c.attr.Size = 6
		c.attr.Growth = 7
		if ch.GrowthPct != nil {
			c.attr.Growth = growthScore(*ch.GrowthPct)
		}
		out = append(out, c)
	}
	return out
}

func fromTechnologies(in Inputs, _ int) []candidate {
	if in.Trends == nil {
		return nil
	}
	var out []candidate
	for _, tech := range in.Trends.Technologies {
		desc := tech.Description
		if desc == "" {
			desc = "Technology trend"
		}
		c := newCandidate(tech.Name, desc, OriginTechnology)
		c.attr.Growth = 7
		c.attr.StrategicValue = 7
		c.pos.Tech = maturityScore(tech.Maturity)
		out = append(out, c)
	}
	return out
}

func fromPolicy(in Inputs, _ int) []candidate {
	if in.Trends == nil {
		return nil
	}
	var out []candidate
	for _, p := range in.Trends.PolicyOpportunities {
		c := newCandidate(p, "Policy or regulatory opening", OriginPolicy)
		c.attr.StrategicValue = 6
		out = append(out, c)
	}
	return out
}

func fromCompetitorWeaknesses(in Inputs, maxPer int) []candidate {
	if in.Competition == nil || maxPer <= 0 {
		return nil
	}
	var out []candidate
	for _, comp := range in.Competition.Competitors {
		name := comp.Name
		if name == "" {
			name = comp.OperatorID
		}
		taken := 0
		for _, w := range comp.Weaknesses {
			if taken >= maxPer {
				break
			}
			if w.Severity != model.SeverityHigh {
				continue
			}
			taken++
			c := newCandidate(
				fmt.Sprintf("Exploit %s weakness: %s", name, w.Description),
				"High-severity competitor weakness",
				OriginCompetitorWeakness,
				"competitor:"+comp.OperatorID,
			)
			c.attr.StrategicValue = 7
			c.pos.Brand = 6
			out = append(out, c)
		}
	}
	return out
}

// growthScore maps a growth rate in percent onto [1,10]; 0% scores 5.
func growthScore(pct float64) float64 {
	return clamp(defaultSubScore+pct/2)
}

func maturityScore(maturity string) float64 {
	switch strings.ToLower(maturity) {
	case "emerging":
		return 3
	case "growing":
		return 5
	case "mature":
		return 7
	default:
		return defaultSubScore
	}
}

// nameKey normalizes a candidate name for deduplication.
func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
