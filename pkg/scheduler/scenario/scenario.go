// Package scenario 提供预置排班场景
package scenario

import (
	"fmt"
	"sort"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint/builtin"
	"github.com/paiban/rostering/pkg/scheduler/horizon"
	"github.com/paiban/rostering/pkg/scheduler/objective"
	"github.com/paiban/rostering/pkg/scheduler/registry"
	"github.com/paiban/rostering/pkg/scheduler/solver"
)

// 场景名称
const (
	NameBasic    = "basic"
	NameRequests = "requests"
	NameAffinity = "affinity"
	NameRolling  = "rolling"
)

const (
	defaultBudget = 5
	defaultDays   = 30
	defaultMonths = 5
)

// Preset 预置场景：建模方案与周期数
type Preset struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Periods     int                `json:"periods"`
	Plan        horizon.PeriodPlan `json:"-"`
	// Requests 偏好模式的请求矩阵，其余场景为 nil
	Requests model.ShiftRequests `json:"-"`
}

// Planner 每个周期使用同一方案
func (p Preset) Planner() horizon.Planner {
	return horizon.Repeat(p.Plan)
}

// Basic 4 人 3 班 3 天，每班 1 人，每人每天最多 1 班，班次数均衡，枚举前 5 个解
func Basic() Preset {
	return Preset{
		Name:        NameBasic,
		Description: "枚举满足覆盖与公平约束的排班",
		Periods:     1,
		Plan: horizon.PeriodPlan{
			Period: model.MustPlanningPeriod(model.PeriodSpec{
				WorkerCount: 4, ShiftCount: 3, DayCount: 3, CoveragePerShift: 1,
			}),
			Rules:     builtin.RuleSet{Fairness: true}.Rules(),
			Objective: objective.None(),
			Solve:     solver.Options{EnumerateAll: true},
			Budget:    defaultBudget,
		},
	}
}

// shiftRequests 5 人 7 天 3 班的请求矩阵
var shiftRequests = model.ShiftRequests{
	{{0, 0, 1}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 0, 1}},
	{{0, 0, 0}, {0, 0, 0}, {0, 1, 0}, {0, 1, 0}, {1, 0, 0}, {0, 0, 0}, {0, 0, 1}},
	{{0, 1, 0}, {0, 1, 0}, {0, 0, 0}, {1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {0, 0, 0}},
	{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 0}, {1, 0, 0}, {0, 0, 0}},
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 0}},
}

// Requests 5 人 3 班 7 天，最大化满足的班次请求
func Requests() Preset {
	requests := make(model.ShiftRequests, len(shiftRequests))
	for w, days := range shiftRequests {
		requests[w] = make([][]int, len(days))
		for d, shifts := range days {
			requests[w][d] = append([]int(nil), shifts...)
		}
	}

	return Preset{
		Name:        NameRequests,
		Description: "最大化满足的班次请求",
		Periods:     1,
		Requests:    requests,
		Plan: horizon.PeriodPlan{
			Period: model.MustPlanningPeriod(model.PeriodSpec{
				WorkerCount: 5, ShiftCount: 3, DayCount: 7, CoveragePerShift: 1,
			}),
			Rules:     builtin.RuleSet{Fairness: true}.Rules(),
			Objective: objective.Preference(requests),
		},
	}
}

// affinityRankings 6 人的搭档偏好排序
var affinityRankings = model.Rankings{
	{2, 4, 5, 3, 1},
	{5, 0, 3, 2, 4},
	{1, 3, 5, 0, 4},
	{2, 5, 4, 1, 0},
	{5, 0, 3, 1, 2},
	{4, 3, 0, 1, 2},
}

// AffinityRankings 返回亲和度场景使用的偏好排序副本
func AffinityRankings() model.Rankings {
	out := make(model.Rankings, len(affinityRankings))
	for w, list := range affinityRankings {
		out[w] = append([]int(nil), list...)
	}
	return out
}

// Affinity 6 人 3 班每班 2 人，每人 3 天假期，任意连续 3 天至少上 2 个班，最大化同班搭档亲和度
func Affinity(days int, sense model.AffinitySense) (Preset, error) {
	if days <= 0 {
		days = defaultDays
	}
	period, err := model.NewPlanningPeriod(model.PeriodSpec{
		WorkerCount:           6,
		ShiftCount:            3,
		DayCount:              days,
		CoveragePerShift:      2,
		VacationDaysPerWorker: 3,
		MinActivity:           &model.ActivityWindow{Minimum: 2, WindowSize: 3},
	})
	if err != nil {
		return Preset{}, err
	}

	return Preset{
		Name:        NameAffinity,
		Description: fmt.Sprintf("最大化同班搭档亲和度（%s）", sense),
		Periods:     1,
		Plan: horizon.PeriodPlan{
			Period:    period,
			Rules:     builtin.RuleSet{MinActivity: true, Vacation: true, Affinity: true}.Rules(),
			Objective: objective.Affinity(),
			Registry:  []registry.Option{registry.WithAffinity(AffinityRankings(), sense)},
			Solve:     solver.Options{EnumerateAll: true},
			Budget:    defaultBudget,
		},
	}, nil
}

// Rolling 6 人 3 班每班 2 人，按月滚动排班，相邻月份首尾不重复同一班次
func Rolling(months, days int) (Preset, error) {
	if months <= 0 {
		months = defaultMonths
	}
	if days <= 0 {
		days = defaultDays
	}
	period, err := model.NewPlanningPeriod(model.PeriodSpec{
		WorkerCount: 6, ShiftCount: 3, DayCount: days, CoveragePerShift: 2,
	})
	if err != nil {
		return Preset{}, err
	}

	return Preset{
		Name:        NameRolling,
		Description: fmt.Sprintf("按月滚动排班 %d 个月", months),
		Periods:     months,
		Plan: horizon.PeriodPlan{
			Period:    period,
			Rules:     builtin.RuleSet{}.Rules(),
			Objective: objective.Rotation(),
		},
	}, nil
}

// Params 按名称选择场景时的参数
type Params struct {
	Days   int
	Months int
	Sense  model.AffinitySense
}

// Names 返回全部场景名称
func Names() []string {
	names := []string{NameBasic, NameRequests, NameAffinity, NameRolling}
	sort.Strings(names)
	return names
}

// Get 按名称返回场景
func Get(name string, params Params) (Preset, error) {
	switch name {
	case NameBasic:
		return Basic(), nil
	case NameRequests:
		return Requests(), nil
	case NameAffinity:
		return Affinity(params.Days, params.Sense)
	case NameRolling:
		return Rolling(params.Months, params.Days)
	default:
		return Preset{}, apperrors.InvalidInput("scenario", fmt.Sprintf("未知场景 %q，可选 %v", name, Names()))
	}
}
