package decision

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sells-group/strategy-cli/internal/config"
	"github.com/sells-group/strategy-cli/internal/model"
)

// Task domains.
const (
	DomainNetwork    = "Network"
	DomainBusiness   = "Business"
	DomainCustomer   = "Customer"
	DomainEfficiency = "Efficiency"
)

// maxLaunchTasks caps the opportunity launches taken from the priority list.
const maxLaunchTasks = 2

type taskRule func(s situation, cfg config.DecisionConfig) []model.Task

// taskRules run independently, one per domain.
var taskRules = []taskRule{
	networkTasks,
	businessTasks,
	customerTasks,
	efficiencyTasks,
}

// buildTasks applies every rule, orders the result by priority tier and
// truncates it to cfg.MaxTasks.
func buildTasks(s situation, cfg config.DecisionConfig) []model.Task {
	var tasks []model.Task
	for _, rule := range taskRules {
		tasks = append(tasks, rule(s, cfg)...)
	}
	slices.SortStableFunc(tasks, func(a, b model.Task) int { return a.Priority.Rank() - b.Priority.Rank() })
	if len(tasks) > cfg.MaxTasks {
		tasks = tasks[:cfg.MaxTasks]
	}
	return tasks
}

func networkTasks(s situation, _ config.DecisionConfig) []model.Task {
	if len(s.networkTech) > 0 {
		tech := strings.Join(s.networkTech, " and ")
		return []model.Task{{
			Name:        "Accelerate " + tech + " rollout",
			Domain:      DomainNetwork,
			Priority:    model.PriorityP1,
			Description: "Bring forward the " + tech + " build in the highest-value areas",
			KPI:         "Coverage milestones met",
		}}
	}
	return []model.Task{{
		Name:        "Network quality programme",
		Domain:      DomainNetwork,
		Priority:    model.PriorityP2,
		Description: "Close the coverage and speed gaps customers notice most",
		KPI:         "Network quality score",
	}}
}

func businessTasks(s situation, _ config.DecisionConfig) []model.Task {
	var tasks []model.Task
	for _, o := range s.priorities {
		if len(tasks) == maxLaunchTasks {
			break
		}
		if o.Priority != model.PriorityP0 && o.Priority != model.PriorityP1 {
			continue
		}
		tasks = append(tasks, model.Task{
			Name:        "Launch: " + o.Name,
			Domain:      DomainBusiness,
			Priority:    o.Priority,
			Description: o.PriorityRationale,
			KPI:         "Business case approved and first release shipped",
		})
	}
	if s.diagnosis.GapPP > 15 {
		tasks = append(tasks, model.Task{
			Name:        "Refocus segment portfolio",
			Domain:      DomainBusiness,
			Priority:    model.PriorityP1,
			Description: fmt.Sprintf("Concentrate investment where a %.1fpp share gap can be closed", s.diagnosis.GapPP),
			KPI:         "Share of investment in focus segments",
		})
	}
	return tasks
}

func customerTasks(s situation, _ config.DecisionConfig) []model.Task {
	if len(s.urgentSegments) == 0 {
		return []model.Task{{
			Name:        "Refresh loyalty programme",
			Domain:      DomainCustomer,
			Priority:    model.PriorityP2,
			Description: "Reward tenure and multi-product households",
			KPI:         "Churn",
		}}
	}
	tasks := make([]model.Task, 0, len(s.urgentSegments))
	for _, seg := range s.urgentSegments {
		tasks = append(tasks, model.Task{
			Name:        "Retention plan for " + seg,
			Domain:      DomainCustomer,
			Priority:    model.PriorityP0,
			Description: "Targeted save offers and service fixes for the flagged " + seg + " segment",
			KPI:         seg + " churn",
		})
	}
	return tasks
}

func efficiencyTasks(s situation, cfg config.DecisionConfig) []model.Task {
	if m := s.ebitdaMargin; m != nil && *m < cfg.EBITDAFloorPct {
		return []model.Task{{
			Name:        "EBITDA recovery programme",
			Domain:      DomainEfficiency,
			Priority:    model.PriorityP0,
			Description: fmt.Sprintf("EBITDA margin of %.1f%% is below the %.0f%% floor", *m, cfg.EBITDAFloorPct),
			KPI:         "EBITDA margin",
		}}
	}
	return []model.Task{{
		Name:        "Automate back-office processes",
		Domain:      DomainEfficiency,
		Priority:    model.PriorityP2,
		Description: "Automate billing and provisioning workflows",
		KPI:         "Cost to serve per subscriber",
	}}
}
