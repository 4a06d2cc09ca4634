// Package observer 把引擎回调的解提取为排班表
package observer

import (
	"sync"

	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
	"github.com/paiban/rostering/pkg/scheduler/registry"
	"github.com/paiban/rostering/pkg/scheduler/solver"
)

// Options 观察器选项
type Options struct {
	// Budget 解数量上限，0 表示不限制
	Budget int
	// Affinity 是否提取每个同班搭档的亲和度贡献
	Affinity bool
	// OnRoster 每提取一个排班表时调用
	OnRoster func(r *model.Roster)
	Logger   *logger.SchedulerLogger
}

// Observer 解观察器
type Observer struct {
	reg  *registry.Registry
	opts Options

	mu      sync.Mutex
	rosters []*model.Roster
	stopped bool
}

// New 创建观察器
func New(reg *registry.Registry, opts Options) *Observer {
	if opts.Logger == nil {
		opts.Logger = logger.NewSchedulerLogger()
	}
	return &Observer{reg: reg, opts: opts}
}

// OnSolution 引擎回调：提取排班表，达到上限后返回 true 要求停止
func (o *Observer) OnSolution(sol solver.Solution) bool {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return true
	}

	r := Extract(o.reg, sol, o.opts.Affinity)
	r.Index = len(o.rosters) + 1
	r.Objective = sol.ObjectiveValue()
	o.rosters = append(o.rosters, r)

	if o.opts.Budget > 0 && len(o.rosters) >= o.opts.Budget {
		o.stopped = true
	}
	stop := o.stopped
	count := len(o.rosters)
	o.mu.Unlock()

	if o.opts.OnRoster != nil {
		o.opts.OnRoster(r)
	}
	if stop {
		o.opts.Logger.SearchStopped(count, o.opts.Budget)
	}
	return stop
}

// Func 返回引擎可用的回调
func (o *Observer) Func() solver.SolutionFunc {
	return o.OnSolution
}

// Count 已提取的解数量，不会超过上限
func (o *Observer) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.rosters)
}

// Stopped 是否因达到上限而要求停止
func (o *Observer) Stopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

// Rosters 返回所有提取的排班表
func (o *Observer) Rosters() []*model.Roster {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*model.Roster(nil), o.rosters...)
}

// Last 返回最后一个排班表
func (o *Observer) Last() *model.Roster {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.rosters) == 0 {
		return nil
	}
	return o.rosters[len(o.rosters)-1]
}

// Extract 从变量取值中提取排班表
func Extract(reg *registry.Registry, vals cpmodel.Values, withAffinity bool) *model.Roster {
	p := reg.Period()
	r := model.NewRoster(p.Workers(), p.Days(), p.Shifts())

	for w := 0; w < p.Workers(); w++ {
		for d := 0; d < p.Days(); d++ {
			for s := 0; s < p.Shifts(); s++ {
				if vals.BoolValue(reg.Shift(w, d, s)) {
					r.Set(w, d, s, true)
				}
			}
		}
	}

	if reg.HasVacations() {
		vacations := make([][]bool, p.Workers())
		for w := range vacations {
			vacations[w] = make([]bool, p.VacationSlots())
			for v := range vacations[w] {
				vacations[w][v] = vals.BoolValue(reg.Vacation(w, v))
			}
		}
		r.SetVacations(vacations)
	}

	if withAffinity && reg.HasAffinity() {
		r.Pairings = make([]model.Pairing, 0)
		reg.EachPair(func(a, b, d, s int) {
			if !r.Works(a, d, s) || !r.Works(b, d, s) {
				return
			}
			r.Pairings = append(r.Pairings, model.Pairing{
				WorkerA: a,
				WorkerB: b,
				Day:     d,
				Shift:   s,
				Value:   vals.IntValue(reg.Paired(a, b, d, s)),
			})
		})
	}

	return r
}
