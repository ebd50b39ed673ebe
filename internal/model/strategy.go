package model

// ModuleAssessment is a one-line verdict for one upstream analysis.
type ModuleAssessment struct {
	Module     string `json:"module"`
	Assessment string `json:"assessment"`
}

// Trap is an anti-pattern the target is tempted toward.
type Trap struct {
	Name       string `json:"name"`
	Temptation string `json:"temptation"`
	Reality    string `json:"reality"`
}

// Scenario is an illustrative outcome range, not a projection.
type Scenario struct {
	Name         string `json:"name"`
	RevenueRange string `json:"revenue_range"`
	Assumption   string `json:"assumption"`
}

// KPITarget is one KPI row with a current value and three escalating targets.
type KPITarget struct {
	Metric  string     `json:"metric"`
	Unit    string     `json:"unit"`
	Current float64    `json:"current"`
	Targets [3]float64 `json:"targets"`
}

// StrategicDiagnosis is the Diagnosis Classifier output.
type StrategicDiagnosis struct {
	Rank              int                `json:"rank"`
	OperatorCount     int                `json:"operator_count"`
	TargetSharePct    float64            `json:"target_share_pct"`
	LeaderSharePct    float64            `json:"leader_share_pct"`
	GapPP             float64            `json:"gap_pp"`
	AppealsWins       int                `json:"appeals_wins"`
	Declining         bool               `json:"declining"`
	MarketStructure   string             `json:"market_structure"`
	Stance            string             `json:"stance"`
	Label             string             `json:"label"`
	Narrative         string             `json:"narrative"`
	ModuleAssessments []ModuleAssessment `json:"module_assessments"`
	Priorities        []OpportunityItem  `json:"priorities"`
	Traps             []Trap             `json:"traps"`
	Scenarios         []Scenario         `json:"scenarios"`
	KPIs              []KPITarget        `json:"kpis"`
}

// Pillar is one of the four strategy pillars.
type Pillar struct {
	Area      string       `json:"area"`
	Name      string       `json:"name"`
	Statement string       `json:"statement"`
	KPIs      []string     `json:"kpis"`
	Priority  PriorityTier `json:"priority"`
}

// Task is one prioritized, domain-tagged action.
type Task struct {
	Name        string       `json:"name"`
	Domain      string       `json:"domain"`
	Priority    PriorityTier `json:"priority"`
	Description string       `json:"description"`
	KPI         string       `json:"kpi,omitempty"`
}

// Milestone is one quarter of the execution roadmap.
type Milestone struct {
	Quarter string   `json:"quarter"`
	Theme   string   `json:"theme"`
	Goals   []string `json:"goals"`
}

// Risk is one entry in the execution risk register.
type Risk struct {
	Name       string `json:"name"`
	Signal     string `json:"signal"`
	Mitigation string `json:"mitigation"`
}

// StrategyDecision holds the four pillars.
type StrategyDecision struct {
	Pillars []Pillar `json:"pillars"`
}

// TaskDecision holds the prioritized task list.
type TaskDecision struct {
	Tasks []Task `json:"tasks"`
}

// ExecutionPlan is the quarterly roadmap.
type ExecutionPlan struct {
	Milestones []Milestone `json:"milestones"`
	Governance []string    `json:"governance"`
	Risks      []Risk      `json:"risks"`
	Traps      []Trap      `json:"traps"`
}

// ThreeDecisions is the Decision Engine output.
type ThreeDecisions struct {
	Strategy  StrategyDecision `json:"strategy"`
	KeyTasks  TaskDecision     `json:"key_tasks"`
	Execution ExecutionPlan    `json:"execution"`
	Narrative string           `json:"narrative"`
}
