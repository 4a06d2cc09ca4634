package horizon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/constraint/builtin"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
	"github.com/paiban/rostering/pkg/scheduler/observer"
	"github.com/paiban/rostering/pkg/scheduler/registry"
	"github.com/paiban/rostering/pkg/scheduler/solver"
	"github.com/paiban/rostering/pkg/stats"
)

// Option 控制器选项
type Option func(*Controller)

// WithLogger 设置日志器
func WithLogger(l *logger.SchedulerLogger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRecorder 设置结果记录器
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// Controller 滚动排班控制器，单线程依次处理每个周期
type Controller struct {
	engine   solver.Engine
	periods  int
	planner  Planner
	logger   *logger.SchedulerLogger
	recorder Recorder

	mu         sync.RWMutex
	state      State
	current    int
	continuity model.Continuity
}

// New 创建控制器
func New(engine solver.Engine, periods int, planner Planner, opts ...Option) *Controller {
	c := &Controller{
		engine:  engine,
		periods: periods,
		planner: planner,
		state:   StateIdle,
		current: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewSchedulerLogger()
	}
	return c
}

// State 返回当前状态及正在处理的周期序号
func (c *Controller) State() (State, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.current
}

// Continuity 返回当前衔接状态的副本
func (c *Controller) Continuity() model.Continuity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.continuity.Clone()
}

func (c *Controller) setState(s State, period int) {
	c.mu.Lock()
	c.state = s
	c.current = period
	c.mu.Unlock()
}

func (c *Controller) setContinuity(facts model.Continuity) {
	c.mu.Lock()
	c.continuity = facts
	c.mu.Unlock()
}

// Run 依次处理所有周期，单个周期失败不会中断整个排班
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	if c.engine == nil || c.planner == nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "控制器缺少求解引擎或建模方案")
	}
	if c.periods <= 0 {
		return nil, apperrors.InvalidInput("periods", fmt.Sprintf("周期数必须为正，实际 %d", c.periods))
	}
	if state, _ := c.State(); state != StateIdle && state != StateDone {
		return nil, apperrors.New(apperrors.CodeInternal, "控制器正在运行")
	}

	start := time.Now()
	result := &Result{
		RunID:   uuid.New().String(),
		Periods: make([]PeriodOutcome, 0, c.periods),
	}
	c.setContinuity(nil)

	for k := 0; k < c.periods; k++ {
		if err := ctx.Err(); err != nil {
			for ; k < c.periods; k++ {
				outcome := PeriodOutcome{
					Index:      k,
					RunID:      uuid.New().String(),
					Status:     solver.StatusUnknown,
					Err:        apperrors.UnknownStatus(k, "排班已取消").WithCause(err),
					StopReason: solver.StopCanceled,
					Continuity: c.Continuity(),
				}
				c.record(&outcome)
				result.Periods = append(result.Periods, outcome)
			}
			break
		}

		outcome := c.runPeriod(ctx, k)
		c.record(&outcome)
		result.Periods = append(result.Periods, outcome)
	}

	c.setState(StateDone, c.periods-1)
	result.Duration = time.Since(start)
	return result, nil
}

func (c *Controller) record(outcome *PeriodOutcome) {
	if c.recorder != nil {
		c.recorder.RecordPeriod(outcome)
	}
}

// runPeriod 处理单个周期：建模 -> 求解 -> 提取 -> 更新衔接状态
func (c *Controller) runPeriod(ctx context.Context, k int) PeriodOutcome {
	start := time.Now()
	outcome := PeriodOutcome{
		Index:  k,
		RunID:  uuid.New().String(),
		Status: solver.StatusUnknown,
	}
	defer func() { outcome.Duration = time.Since(start) }()

	c.setState(StateBuilding, k)
	plan, reg, cctx, manager, err := c.build(k, outcome.RunID)
	if err != nil {
		c.logger.BuildFailed(k, err)
		outcome.Status = solver.StatusModelInvalid
		outcome.Err = err
		workers := plan.Period.Workers()
		if workers == 0 {
			workers = len(c.Continuity())
		}
		c.resetContinuity(k, workers, "建模失败")
		outcome.Continuity = c.Continuity()
		return outcome
	}

	c.setState(StateSolving, k)
	obs := observer.New(reg, observer.Options{
		Budget:   plan.Budget,
		Affinity: reg.HasAffinity(),
		Logger:   c.logger,
	})
	resp, err := c.engine.Solve(ctx, reg.Model(), plan.Solve, obs.Func())
	if err != nil {
		c.logger.BuildFailed(k, err)
		outcome.Status = solver.StatusModelInvalid
		if resp != nil {
			outcome.Status = resp.Status
			outcome.Statistics = resp.Statistics
		}
		outcome.Err = err
		c.resetContinuity(k, plan.Period.Workers(), "模型无效")
		outcome.Continuity = c.Continuity()
		return outcome
	}

	c.setState(StateExtracting, k)
	outcome.Status = resp.Status
	outcome.Statistics = resp.Statistics
	outcome.StopReason = resp.StopReason
	outcome.Objective = resp.Objective
	outcome.Rosters = obs.Rosters()
	outcome.Solutions = obs.Count()

	if resp.Status.HasSolution() {
		roster := obs.Last()
		if roster == nil {
			roster = observer.Extract(reg, resp.Values, reg.HasAffinity())
			roster.Objective = resp.Objective
		}
		outcome.Roster = roster
		outcome.Workload = stats.AnalyzeWorkload(roster)
		outcome.Coverage = stats.AnalyzeCoverage(roster, plan.Period.Coverage())
		outcome.Violations = manager.Evaluate(cctx, roster).Violations

		facts := model.ContinuityFromRoster(roster)
		c.setContinuity(facts)
		c.logger.ContinuityCarried(k, countFacts(facts))
	} else {
		if resp.Status == solver.StatusInfeasible {
			outcome.Err = apperrors.InfeasibleSpec(k)
		} else {
			outcome.Err = apperrors.UnknownStatus(k, string(resp.StopReason))
		}
		c.resetContinuity(k, plan.Period.Workers(), resp.Status.String())
	}
	outcome.Continuity = c.Continuity()

	c.logger.PeriodComplete(outcome.RunID, k, resp.Status.String(), resp.Statistics.WallTime,
		resp.Statistics.Conflicts, resp.Statistics.Branches, outcome.Solutions)
	return outcome
}

// build 按方案构建周期模型，runID 与周期结果一致
func (c *Controller) build(k int, runID string) (PeriodPlan, *registry.Registry, *constraint.Context, *constraint.Manager, error) {
	plan, err := c.planner(k)
	if err != nil {
		return plan, nil, nil, nil, err
	}
	if plan.Period.IsZero() {
		return plan, nil, nil, nil, apperrors.InvalidDimension("PlanningPeriod", fmt.Sprintf("周期 %d 未设置排班参数", k))
	}

	c.logger.PeriodStart(runID, k, plan.Period.String())

	m := cpmodel.NewModel(fmt.Sprintf("period-%d", k))
	reg, err := registry.New(m, plan.Period, plan.Registry...)
	if err != nil {
		return plan, nil, nil, nil, err
	}

	cctx := constraint.NewContext(reg, c.Continuity().Resize(plan.Period.Workers()))
	cctx.Logger = c.logger

	manager := constraint.NewManager(plan.Rules...)
	builtin.RegisterContinuity(manager)
	if err := manager.Apply(cctx); err != nil {
		return plan, nil, nil, nil, err
	}
	if err := plan.Objective.WithLogger(c.logger).Compose(reg); err != nil {
		return plan, nil, nil, nil, err
	}

	constraints := 0
	for _, n := range m.Summary() {
		constraints += n
	}
	c.logger.ModelBuilt(k, m.NumBoolVars(), m.NumIntVars(), constraints, plan.Objective.Mode().String())
	return plan, reg, cctx, manager, nil
}

// resetContinuity 清空衔接状态，下一周期不受任何约束
func (c *Controller) resetContinuity(k, workers int, reason string) {
	c.setContinuity(model.NewContinuity(workers))
	c.logger.ContinuityReset(k, reason)
}

func countFacts(facts model.Continuity) int {
	n := 0
	for w := range facts {
		if _, ok := facts.Shift(w); ok {
			n++
		}
	}
	return n
}
