package metrics

import (
	"github.com/paiban/rostering/pkg/scheduler/horizon"
)

// 指标名称
const (
	PeriodsTotal    = "roster_periods_total"
	SolutionsTotal  = "roster_solutions_total"
	ConflictsTotal  = "roster_solver_conflicts_total"
	ViolationsTotal = "roster_constraint_violations_total"
	SolveDuration   = "roster_solve_duration_seconds"
	FairnessGini    = "roster_fairness_gini"
	CoverageRate    = "roster_coverage_rate"
	ContinuityFacts = "roster_continuity_facts"
	ObjectiveValue  = "roster_objective_value"
)

// Recorder 把每个周期的结果写入注册表，实现 horizon.Recorder
type Recorder struct {
	scenario string
	registry *Registry

	periods    *Counter
	solutions  *Counter
	conflicts  *Counter
	violations *Counter
	duration   *Histogram
	gini       *Gauge
	coverage   *Gauge
	facts      *Gauge
	objective  *Gauge
}

var _ horizon.Recorder = (*Recorder)(nil)

// NewRecorder 在注册表上创建排班指标，scenario 作为标签值
func NewRecorder(registry *Registry, scenario string) *Recorder {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Recorder{
		scenario:   scenario,
		registry:   registry,
		periods:    registry.NewCounter(PeriodsTotal, "已处理的排班周期数", []string{"scenario", "status"}),
		solutions:  registry.NewCounter(SolutionsTotal, "观察到的解数量", []string{"scenario"}),
		conflicts:  registry.NewCounter(ConflictsTotal, "求解器冲突次数", []string{"scenario"}),
		violations: registry.NewCounter(ViolationsTotal, "排班表约束违反次数", []string{"scenario", "constraint_type"}),
		duration: registry.NewHistogram(SolveDuration, "单周期求解耗时", []string{"scenario"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60}),
		gini:      registry.NewGauge(FairnessGini, "最近一个周期的班次数基尼系数", []string{"scenario"}),
		coverage:  registry.NewGauge(CoverageRate, "最近一个周期的覆盖率", []string{"scenario"}),
		facts:     registry.NewGauge(ContinuityFacts, "传给下一周期的衔接事实数", []string{"scenario"}),
		objective: registry.NewGauge(ObjectiveValue, "最近一个周期的目标值", []string{"scenario"}),
	}
}

// Registry 返回底层注册表
func (r *Recorder) Registry() *Registry { return r.registry }

// RecordPeriod 记录一个周期
func (r *Recorder) RecordPeriod(outcome *horizon.PeriodOutcome) {
	r.periods.Inc(r.scenario, outcome.Status.String())
	r.solutions.Add(float64(outcome.Solutions), r.scenario)
	r.conflicts.Add(float64(outcome.Statistics.Conflicts), r.scenario)
	r.duration.Observe(outcome.Statistics.WallTime.Seconds(), r.scenario)

	for _, v := range outcome.Violations {
		r.violations.Inc(r.scenario, string(v.ConstraintType))
	}

	facts := 0
	for w := range outcome.Continuity {
		if _, ok := outcome.Continuity.Shift(w); ok {
			facts++
		}
	}
	r.facts.Set(float64(facts), r.scenario)

	if !outcome.Solved() {
		return
	}
	r.objective.Set(float64(outcome.Objective), r.scenario)
	if outcome.Workload != nil {
		r.gini.Set(outcome.Workload.Gini, r.scenario)
	}
	if outcome.Coverage != nil {
		r.coverage.Set(outcome.Coverage.OverallCoverage, r.scenario)
	}
}
