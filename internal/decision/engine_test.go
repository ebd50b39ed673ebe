package decision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/strategy-cli/internal/model"
)

func ptr(v float64) *float64 { return &v }

func testBundle() *model.Bundle {
	return &model.Bundle{
		OrgID: "op-t",
		Market: &model.MarketInsight{Segments: []model.SegmentAnalysis{
			{Name: "prepaid mobile", Health: model.HealthCritical, Flag: "URGENT: churn above 3%"},
			{Name: "enterprise", Health: model.HealthHealthy},
		}},
		Competition: &model.CompetitionInsight{IntensitySignals: []string{"Leader cut unlimited plan prices"}},
		Self: &model.SelfInsight{
			OperatorID:       "op-t",
			NetworkEvolution: []string{"FTTH footprint doubling by 2026", "5G standalone core"},
			Financials:       model.Financials{EBITDAMarginPct: ptr(24.5)},
		},
		SWOT: &model.SWOTAnalysis{Weaknesses: []string{"cost base"}},
	}
}

func testDiagnosis() *model.StrategicDiagnosis {
	return &model.StrategicDiagnosis{
		Rank:           2,
		TargetSharePct: 25,
		GapPP:          25,
		Label:          "Squeezed Middle",
		Stance:         "Offensive",
		Priorities: []model.OpportunityItem{
			{Name: "Use network to capture 5G", Priority: model.PriorityP0, PriorityRationale: "grow_invest quadrant"},
			{Name: "Fixed wireless", Priority: model.PriorityP1},
			{Name: "IoT", Priority: model.PriorityP0},
		},
		Traps: []model.Trap{{Name: "Stuck in the middle"}},
		KPIs: []model.KPITarget{
			{Metric: "ebitda_margin", Unit: "%", Current: 24.5, Targets: [3]float64{25.5, 26.5, 27.5}},
		},
	}
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestDecide_Shape(t *testing.T) {
	t.Parallel()

	out := newEngine(t).Decide(testBundle(), testDiagnosis())

	require.Len(t, out.Strategy.Pillars, 4)
	areas := []string{"Growth", "Competitive", "Transformation", "Customer"}
	for i, p := range out.Strategy.Pillars {
		assert.Equal(t, areas[i], p.Area)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Statement)
		assert.NotEmpty(t, p.KPIs)
		for _, k := range p.KPIs {
			assert.NotEmpty(t, k)
		}
		assert.Contains(t, []model.PriorityTier{model.PriorityP0, model.PriorityP1}, p.Priority)
	}

	require.Len(t, out.Execution.Milestones, 4)
	for i, q := range []string{"Q1", "Q2", "Q3", "Q4"} {
		assert.Equal(t, q, out.Execution.Milestones[i].Quarter)
		assert.NotEmpty(t, out.Execution.Milestones[i].Goals)
	}

	assert.LessOrEqual(t, len(out.KeyTasks.Tasks), 8)
	for i := 1; i < len(out.KeyTasks.Tasks); i++ {
		assert.LessOrEqual(t, out.KeyTasks.Tasks[i-1].Priority.Rank(), out.KeyTasks.Tasks[i].Priority.Rank())
	}

	assert.Len(t, out.Execution.Governance, 3)
	assert.Equal(t, []model.Trap{{Name: "Stuck in the middle"}}, out.Execution.Traps)
}

func TestDecide_PillarWording(t *testing.T) {
	t.Parallel()

	p := newEngine(t).Decide(testBundle(), testDiagnosis()).Strategy.Pillars

	assert.Equal(t, "Accelerate Share Capture", p[0].Name)
	assert.Contains(t, p[0].Statement, "lead with Use network to capture 5G")
	assert.Equal(t, "Sharpen Differentiation", p[1].Name)
	assert.Equal(t, model.PriorityP0, p[1].Priority)
	assert.Equal(t, "Lead on 5G and FTTH", p[2].Name)
	assert.Contains(t, p[2].KPIs, "EBITDA margin from 24.5% to 25.5%")
	assert.Equal(t, "Stop Churn in Prepaid Mobile", p[3].Name)
	assert.Equal(t, model.PriorityP0, p[3].Priority)
}

func TestDecide_LeaderPillars(t *testing.T) {
	t.Parallel()

	b := testBundle()
	b.Market = nil
	b.Self.NetworkEvolution = nil
	b.SWOT.Weaknesses = []string{"a", "b", "c"}
	d := testDiagnosis()
	d.Rank, d.GapPP, d.Label, d.Stance = 1, 0, "Vulnerable Leader", "Defensive"

	p := newEngine(t).Decide(b, d).Strategy.Pillars
	assert.Equal(t, "Extend Market Leadership", p[0].Name)
	assert.Equal(t, "Close Vulnerability Gaps", p[1].Name)
	assert.Equal(t, model.PriorityP1, p[1].Priority)
	assert.Equal(t, "Fix the Operating Model", p[2].Name)
	assert.Equal(t, "Deepen Customer Loyalty", p[3].Name)
}

func TestBuildTasks_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ebitda   *float64
		flag     string
		wantTask string
		wantTier model.PriorityTier
	}{
		{"low ebitda recovers", ptr(24.5), "", "EBITDA recovery programme", model.PriorityP0},
		{"ebitda at floor automates", ptr(30), "", "Automate back-office processes", model.PriorityP2},
		{"unknown ebitda automates", nil, "", "Automate back-office processes", model.PriorityP2},
		{"urgent segment retention", ptr(35), "urgent: churn spike", "Retention plan for Prepaid", model.PriorityP0},
		{"no urgent segment", ptr(35), "watch", "Refresh loyalty programme", model.PriorityP2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := &model.Bundle{
				Market: &model.MarketInsight{Segments: []model.SegmentAnalysis{{Name: "prepaid", Flag: tt.flag}}},
				Self:   &model.SelfInsight{Financials: model.Financials{EBITDAMarginPct: tt.ebitda}},
			}
			tasks := buildTasks(newSituation(b, &model.StrategicDiagnosis{}), DefaultConfig())

			var found *model.Task
			for i := range tasks {
				if tasks[i].Name == tt.wantTask {
					found = &tasks[i]
				}
			}
			require.NotNil(t, found, "task %q missing from %v", tt.wantTask, tasks)
			assert.Equal(t, tt.wantTier, found.Priority)
		})
	}
}

func TestBuildTasks_TruncatesAfterSorting(t *testing.T) {
	t.Parallel()

	b := testBundle()
	var segs []model.SegmentAnalysis
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		segs = append(segs, model.SegmentAnalysis{Name: n, Flag: "URGENT"})
	}
	b.Market.Segments = segs

	cfg := DefaultConfig()
	tasks := buildTasks(newSituation(b, testDiagnosis()), cfg)

	require.Len(t, tasks, cfg.MaxTasks)
	for _, task := range tasks {
		assert.Equal(t, model.PriorityP0, task.Priority)
	}
	// One P0 launch, seven retention plans and the recovery task compete for eight slots.
	assert.Equal(t, "Launch: Use network to capture 5G", tasks[0].Name)
	assert.Equal(t, "Retention plan for A", tasks[1].Name)
	assert.Equal(t, "Retention plan for G", tasks[7].Name)
}

func TestBuildMilestones(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{Name: "p0-a", Priority: model.PriorityP0},
		{Name: "p0-b", Priority: model.PriorityP0},
		{Name: "p0-c", Priority: model.PriorityP0},
		{Name: "p0-d", Priority: model.PriorityP0},
		{Name: "p1-a", Priority: model.PriorityP1},
		{Name: "p2-a", Priority: model.PriorityP2},
	}
	ms := buildMilestones(tasks)

	assert.Equal(t, []string{"p0-a", "p0-b", "p0-c"}, ms[0].Goals)
	assert.Equal(t, []string{"p0-a", "p0-b", "p0-c", "p0-d", "p1-a"}, ms[1].Goals)
	assert.Equal(t, "Optimize", ms[2].Theme)
	assert.Equal(t, "Review", ms[3].Theme)

	empty := buildMilestones(nil)
	assert.Len(t, empty, 4)
	assert.NotEmpty(t, empty[0].Goals)
	assert.NotEmpty(t, empty[1].Goals)
}

func TestBuildRisks(t *testing.T) {
	t.Parallel()

	assert.Len(t, buildRisks(nil), 2)

	risks := buildRisks(&model.CompetitionInsight{IntensitySignals: []string{"price cut", "new entrant"}})
	require.Len(t, risks, 4)
	assert.Equal(t, "price cut", risks[0].Signal)
	assert.Equal(t, "Execution capacity", risks[2].Name)
	assert.Equal(t, "Data quality", risks[3].Name)
}

func TestNarrative(t *testing.T) {
	t.Parallel()

	out := newEngine(t).Decide(testBundle(), testDiagnosis())
	assert.Contains(t, out.Narrative, "Diagnosed as Squeezed Middle (offensive posture)")
	assert.Contains(t, out.Narrative, `led by "Accelerate Share Capture"`)
	assert.Contains(t, out.Narrative, "3 P0 tasks across Business, Customer, Efficiency and Network")
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateConfig(DefaultConfig()))

	cfg := DefaultConfig()
	cfg.MaxTasks = 0
	cfg.EBITDAFloorPct = -1
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tasks must be between 1 and 8")
	assert.Contains(t, err.Error(), "ebitda_floor_pct must be between 0 and 100")

	_, err = New(cfg)
	assert.Error(t, err)
}

func TestValidateConfig_MaxTasksBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		maxTasks int
		wantErr  bool
	}{
		{0, true},
		{1, false},
		{MaxTaskLimit, false},
		{MaxTaskLimit + 1, true},
		{50, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.maxTasks), func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.MaxTasks = tt.maxTasks
			err := ValidateConfig(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "max_tasks must be between 1 and 8")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestJoinDomains(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no domains", joinDomains(nil))
	assert.Equal(t, "Network", joinDomains([]string{"Network"}))
	assert.Equal(t, "Network, Customer and Efficiency", joinDomains([]string{"Network", "Customer", "Efficiency"}))
}
