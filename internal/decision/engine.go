// Package decision derives the three decisions (strategy pillars, key tasks
// and the execution plan) from a diagnosed bundle.
package decision

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/strategy-cli/internal/config"
	"github.com/sells-group/strategy-cli/internal/model"
)

// MaxTaskLimit bounds the key-task list.
const MaxTaskLimit = 8

// DefaultConfig returns the standard engine limits.
func DefaultConfig() config.DecisionConfig {
	return config.DecisionConfig{
		MaxTasks:       MaxTaskLimit,
		EBITDAFloorPct: 30,
	}
}

// ValidateConfig checks a DecisionConfig.
func ValidateConfig(c config.DecisionConfig) error {
	var errs []string
	if c.MaxTasks < 1 || c.MaxTasks > MaxTaskLimit {
		errs = append(errs, fmt.Sprintf("max_tasks must be between 1 and %d", MaxTaskLimit))
	}
	if c.EBITDAFloorPct < 0 || c.EBITDAFloorPct > 100 {
		errs = append(errs, "ebitda_floor_pct must be between 0 and 100")
	}
	if len(errs) > 0 {
		return eris.Errorf("decision: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Engine turns a diagnosis into ThreeDecisions.
type Engine struct {
	cfg config.DecisionConfig
}

// New validates cfg and returns an Engine.
func New(cfg config.DecisionConfig) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Decide builds the strategy, task list and execution plan. The result always
// has four pillars and four milestones.
func (e *Engine) Decide(b *model.Bundle, d *model.StrategicDiagnosis) *model.ThreeDecisions {
	in := newSituation(b, d)

	pillars := buildPillars(in)
	tasks := buildTasks(in, e.cfg)

	return &model.ThreeDecisions{
		Strategy: model.StrategyDecision{Pillars: pillars},
		KeyTasks: model.TaskDecision{Tasks: tasks},
		Execution: model.ExecutionPlan{
			Milestones: buildMilestones(tasks),
			Governance: slices.Clone(governance),
			Risks:      buildRisks(b.Competition),
			Traps:      slices.Clone(d.Traps),
		},
		Narrative: narrative(d, pillars, tasks),
	}
}

var governance = []string{
	"Weekly task-owner stand-up on P0 delivery",
	"Monthly KPI review with the executive team",
	"Quarterly strategy review with the board",
}

func buildRisks(c *model.CompetitionInsight) []model.Risk {
	var risks []model.Risk
	if c != nil {
		for _, s := range c.IntensitySignals {
			risks = append(risks, model.Risk{
				Name:       "Competitive escalation",
				Signal:     s,
				Mitigation: "Pre-agree response playbooks and protect the highest-value segments",
			})
		}
	}
	return append(risks,
		model.Risk{
			Name:       "Execution capacity",
			Signal:     "P0 tasks slipping by more than one month",
			Mitigation: "Limit work in progress and escalate resourcing at the monthly review",
		},
		model.Risk{
			Name:       "Data quality",
			Signal:     "KPIs reported from low-confidence or estimated sources",
			Mitigation: "Replace synthesized figures with sourced data before quarterly reviews",
		},
	)
}

func buildMilestones(tasks []model.Task) []model.Milestone {
	var p0, p01 []string
	for _, t := range tasks {
		switch t.Priority {
		case model.PriorityP0:
			if len(p0) < 3 {
				p0 = append(p0, t.Name)
			}
			p01 = append(p01, t.Name)
		case model.PriorityP1:
			p01 = append(p01, t.Name)
		}
	}
	if len(p0) == 0 {
		p0 = []string{"Confirm priorities, owners and baselines"}
	}
	if len(p01) == 0 {
		p01 = []string{"Scale the initiatives validated in Q1"}
	}

	return []model.Milestone{
		{Quarter: "Q1", Theme: "Foundation", Goals: p0},
		{Quarter: "Q2", Theme: "Scale", Goals: p01},
		{Quarter: "Q3", Theme: "Optimize", Goals: []string{
			"Review KPI progress against targets",
			"Reallocate budget to the highest-return initiatives",
		}},
		{Quarter: "Q4", Theme: "Review", Goals: []string{
			"Run the annual strategy review",
			"Set next-year targets from the updated diagnosis",
		}},
	}
}

func narrative(d *model.StrategicDiagnosis, pillars []model.Pillar, tasks []model.Task) string {
	var p0 int
	var domains []string
	for _, t := range tasks {
		if t.Priority == model.PriorityP0 {
			p0++
		}
		if !slices.Contains(domains, t.Domain) {
			domains = append(domains, t.Domain)
		}
	}
	return fmt.Sprintf(
		"Diagnosed as %s (%s posture), the plan rests on four pillars led by %q. It commits to %d P0 tasks across %s, sequenced over four quarters.",
		d.Label, strings.ToLower(d.Stance), pillars[0].Name, p0, joinDomains(domains))
}

func joinDomains(ds []string) string {
	switch len(ds) {
	case 0:
		return "no domains"
	case 1:
		return ds[0]
	default:
		return strings.Join(ds[:len(ds)-1], ", ") + " and " + ds[len(ds)-1]
	}
}
