package solver

import (
	"context"
	"time"

	"github.com/crillab/gophersat/solver"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// SATEngine 基于 gophersat 伪布尔求解器的引擎
// 优化通过逐步收紧目标下界实现，枚举通过阻塞子句实现
type SATEngine struct {
	logger *logger.SchedulerLogger
}

// NewSATEngine 创建引擎
func NewSATEngine() *SATEngine {
	return &SATEngine{logger: logger.NewSchedulerLogger()}
}

// WithLogger 设置日志器
func (e *SATEngine) WithLogger(l *logger.SchedulerLogger) *SATEngine {
	e.logger = l
	return e
}

// Name 返回引擎名称
func (e *SATEngine) Name() string { return "gophersat" }

// assignment 一个解的取值
type assignment struct {
	enc       *encoding
	model     []bool
	index     int
	objective int64
}

func (a *assignment) lit(v int) bool {
	return v > 0 && v <= len(a.model) && a.model[v-1]
}

// BoolValue 布尔变量取值
func (a *assignment) BoolValue(v cpmodel.BoolVar) bool { return a.lit(v.Index() + 1) }

// IntValue 整数变量取值
func (a *assignment) IntValue(v cpmodel.IntVar) int64 {
	if a.lit(a.enc.intLit[v.Index()]) {
		return a.enc.intCoeff[v.Index()]
	}
	return 0
}

// Index 解的序号
func (a *assignment) Index() int { return a.index }

// ObjectiveValue 目标值
func (a *assignment) ObjectiveValue() int64 { return a.objective }

// search 一次 Solve 调用的状态
// 整个搜索复用同一个求解器，收紧与阻塞约束追加到其中，学到的子句得以保留
type search struct {
	ctx  context.Context
	sat  *solver.Solver
	resp *Response
	// abandoned 超时后求解器仍在后台运行，不能再访问
	abandoned bool
}

type satResult struct {
	status solver.Status
	model  []bool
	stats  solver.Stats
}

func newSearch(ctx context.Context, enc *encoding, resp *Response) *search {
	s := &search{ctx: ctx, resp: resp}
	if enc.numVars == 0 {
		return s
	}
	constrs := make([]solver.PBConstr, 0, len(enc.constrs)+1)
	for _, c := range enc.constrs {
		constrs = append(constrs, clonePB(c))
	}
	// 恒真约束，让求解器为所有变量分配空间，之后追加的约束可以引用任何变量
	all := make([]int, enc.numVars)
	for i := range all {
		all[i] = i + 1
	}
	constrs = append(constrs, solver.PBConstr{Lits: all, AtLeast: 0})
	s.sat = solver.New(solver.ParsePBConstrs(constrs))
	return s
}

// run 求解一次；上下文结束时放弃等待并返回 Indet
func (s *search) run() (solver.Status, []bool) {
	s.resp.Statistics.Iterations++
	if s.sat == nil {
		return solver.Sat, nil
	}

	done := make(chan satResult, 1)
	go func(sat *solver.Solver) {
		status := sat.Solve()
		r := satResult{status: status, stats: sat.Stats}
		if status == solver.Sat {
			r.model = sat.Model()
		}
		done <- r
	}(s.sat)

	select {
	case r := <-done:
		s.resp.Statistics.Conflicts = int64(r.stats.NbConflicts)
		s.resp.Statistics.Branches = int64(r.stats.NbDecisions)
		return r.status, r.model
	case <-s.ctx.Done():
		s.abandoned = true
		return solver.Indet, nil
	}
}

// add 向求解器追加约束
func (s *search) add(c solver.PBConstr) {
	if s.sat == nil || s.abandoned {
		return
	}
	if c.Weights == nil && c.AtLeast == 1 {
		lits := make([]solver.Lit, len(c.Lits))
		for i, v := range c.Lits {
			lits[i] = solver.IntToLit(int32(v))
		}
		s.sat.AppendClause(solver.NewClause(lits))
		return
	}
	s.sat.AppendClause(c.Clause())
}

// interrupted 检查上下文，返回停止原因
func (s *search) interrupted() (StopReason, bool) {
	switch err := s.ctx.Err(); err {
	case nil:
		return "", false
	case context.DeadlineExceeded:
		return StopTimeLimit, true
	default:
		return StopCanceled, true
	}
}

// Solve 求解模型
func (e *SATEngine) Solve(ctx context.Context, m *cpmodel.Model, opts Options, cb SolutionFunc) (*Response, error) {
	start := time.Now()
	resp := &Response{Status: StatusUnknown}
	defer func() { resp.Statistics.WallTime = time.Since(start) }()

	if err := m.Validate(); err != nil {
		resp.Status = StatusModelInvalid
		return resp, apperrors.Wrap(err, apperrors.CodeModelInvalid, "模型校验失败")
	}
	enc, err := encode(m)
	if err != nil {
		resp.Status = StatusModelInvalid
		return resp, apperrors.Wrap(err, apperrors.CodeModelInvalid, "模型无法编码")
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	if enc.unsat {
		resp.Status = StatusInfeasible
		resp.StopReason = StopExhausted
		return resp, nil
	}

	s := newSearch(ctx, enc, resp)

	var (
		best     *assignment
		proved   bool
		reason   StopReason
		internal weighted
		bound    int64
	)
	obj := m.Objective()
	if obj != nil {
		expr := obj.Expr
		if obj.Sense == cpmodel.Minimize {
			expr = expr.Scale(-1)
		}
		internal = enc.normalize(expr)
		bound = enc.upperBound(internal)
	}

	for {
		if r, stop := s.interrupted(); stop {
			reason = r
			break
		}

		status, model := s.run()
		if s.abandoned {
			reason, _ = s.interrupted()
			break
		}
		if status == solver.Unsat {
			proved = true
			break
		}
		if status != solver.Sat {
			reason = StopSolver
			break
		}

		resp.Statistics.Solutions++
		sol := &assignment{enc: enc, model: model, index: resp.Statistics.Solutions}
		best = sol

		if obj == nil {
			if !opts.EnumerateAll {
				proved = true
				break
			}
			e.logger.SolutionFound(sol.index, 0)
			if cb != nil && cb(sol) {
				reason = StopCallback
				break
			}
			if enc.numBool == 0 {
				proved = true
				break
			}
			s.add(enc.blocking(model))
			continue
		}

		sol.objective = obj.Expr.Evaluate(sol)
		value := sol.objective
		if obj.Sense == cpmodel.Minimize {
			value = -value
		}
		e.logger.SolutionFound(sol.index, sol.objective)

		if opts.EnumerateAll && cb != nil && cb(sol) {
			reason = StopCallback
			proved = value >= bound
			break
		}
		if value >= bound {
			proved = true
			break
		}
		pb, ok := internal.atLeast(value + 1)
		if !ok {
			proved = true
			break
		}
		if pb != nil {
			s.add(*pb)
		}
	}

	switch {
	case best != nil && proved:
		resp.Status = StatusOptimal
	case best != nil:
		resp.Status = StatusFeasible
	case proved:
		resp.Status = StatusInfeasible
	default:
		resp.Status = StatusUnknown
	}
	if proved && reason == "" {
		reason = StopExhausted
	}
	resp.StopReason = reason

	if best != nil {
		resp.Objective = best.objective
		resp.Values = best
		// 非枚举模式只回调最终的解
		if !opts.EnumerateAll && cb != nil {
			cb(best)
		}
	}
	return resp, nil
}
