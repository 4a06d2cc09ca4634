// Package horizon 按周期依次建模求解，并在周期之间传递衔接状态
package horizon

import (
	"fmt"
	"time"

	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/objective"
	"github.com/paiban/rostering/pkg/scheduler/registry"
	"github.com/paiban/rostering/pkg/scheduler/solver"
	"github.com/paiban/rostering/pkg/stats"
)

// State 控制器状态
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateSolving
	StateExtracting
	StateDone
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building_period"
	case StateSolving:
		return "solving"
	case StateExtracting:
		return "extracting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PeriodPlan 单个周期的建模方案
type PeriodPlan struct {
	Period    model.PlanningPeriod
	Rules     []constraint.Rule
	Objective objective.Composer
	Registry  []registry.Option
	Solve     solver.Options
	// Budget 解数量上限，0 表示不限制
	Budget int
}

// Planner 按周期序号返回建模方案，不同周期可以不同
type Planner func(index int) (PeriodPlan, error)

// Repeat 每个周期使用同一方案
func Repeat(plan PeriodPlan) Planner {
	return func(int) (PeriodPlan, error) {
		return plan, nil
	}
}

// PeriodOutcome 单个周期的结果
type PeriodOutcome struct {
	Index  int           `json:"index"`
	RunID  string        `json:"run_id"`
	Status solver.Status `json:"status"`
	Err    error         `json:"-"`

	// Roster 最后提取的排班表（最优化时即最优解），无解时为 nil
	Roster     *model.Roster     `json:"roster,omitempty"`
	Rosters    []*model.Roster   `json:"-"`
	Solutions  int               `json:"solutions"`
	Objective  int64             `json:"objective"`
	StopReason solver.StopReason `json:"stop_reason"`

	Statistics solver.Statistics            `json:"statistics"`
	Workload   *stats.WorkloadMetrics       `json:"workload,omitempty"`
	Coverage   *stats.CoverageMetrics       `json:"coverage,omitempty"`
	Violations []constraint.ViolationDetail `json:"violations,omitempty"`

	// Continuity 本周期结束后传给下一周期的衔接状态
	Continuity model.Continuity `json:"continuity"`
	Duration   time.Duration    `json:"duration"`
}

// Solved 是否得到了解
func (o *PeriodOutcome) Solved() bool {
	return o.Status.HasSolution()
}

// Result 整个滚动排班的结果
type Result struct {
	RunID    string          `json:"run_id"`
	Periods  []PeriodOutcome `json:"periods"`
	Duration time.Duration   `json:"duration"`
}

// SolvedCount 得到解的周期数
func (r *Result) SolvedCount() int {
	count := 0
	for i := range r.Periods {
		if r.Periods[i].Solved() {
			count++
		}
	}
	return count
}

// ByStatus 按状态统计周期数
func (r *Result) ByStatus() map[solver.Status]int {
	counts := make(map[solver.Status]int)
	for i := range r.Periods {
		counts[r.Periods[i].Status]++
	}
	return counts
}

// Recorder 周期结果记录器（指标采集）
type Recorder interface {
	RecordPeriod(outcome *PeriodOutcome)
}
