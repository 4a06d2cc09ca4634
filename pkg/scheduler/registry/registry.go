// Package registry 为排班周期分配并命名决策变量
package registry

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// Option 注册表选项
type Option func(*options)

type options struct {
	rankings model.Rankings
	sense    model.AffinitySense
	affinity bool
}

// WithAffinity 启用亲和度：计算静态亲和度并为每个 (a, b, 天, 班次) 分配辅助变量
func WithAffinity(r model.Rankings, sense model.AffinitySense) Option {
	return func(o *options) {
		o.rankings = r
		o.sense = sense
		o.affinity = true
	}
}

// Registry 变量注册表
// 班次变量按 (员工, 天, 班次) 稠密存储，偏移量为 (w*days+d)*shifts+s
type Registry struct {
	period model.PlanningPeriod
	model  *cpmodel.Model

	shifts    []cpmodel.BoolVar
	vacations []cpmodel.BoolVar

	affinity *model.AffinityMatrix
	paired   []cpmodel.IntVar
}

// New 为周期分配全部变量
func New(m *cpmodel.Model, p model.PlanningPeriod, opts ...Option) (*Registry, error) {
	if p.IsZero() || p.Workers() <= 0 || p.Days() <= 0 || p.Shifts() <= 0 {
		return nil, apperrors.InvalidDimension("PlanningPeriod", "周期未初始化或维度非正")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{period: p, model: m}

	// 偏好数据先于任何变量校验，失败时不污染模型
	if o.affinity {
		matrix, err := model.DeriveAffinity(o.rankings, p.Workers(), o.sense)
		if err != nil {
			return nil, err
		}
		r.affinity = matrix
	}

	workers, days, shifts := p.Workers(), p.Days(), p.Shifts()

	r.shifts = make([]cpmodel.BoolVar, workers*days*shifts)
	for w := 0; w < workers; w++ {
		for d := 0; d < days; d++ {
			for s := 0; s < shifts; s++ {
				r.shifts[(w*days+d)*shifts+s] = m.NewBoolVar(fmt.Sprintf("shift_n%d_d%d_s%d", w, d, s))
			}
		}
	}

	if p.HasVacation() {
		slots := p.VacationSlots()
		r.vacations = make([]cpmodel.BoolVar, workers*slots)
		for w := 0; w < workers; w++ {
			for v := 0; v < slots; v++ {
				r.vacations[w*slots+v] = m.NewBoolVar(fmt.Sprintf("vacation_n%d_v%d", w, v))
			}
		}
	}

	if r.affinity != nil {
		ub := int64(r.affinity.MaxWeight())
		r.paired = make([]cpmodel.IntVar, workers*workers*days*shifts)
		for a := 0; a < workers; a++ {
			for b := 0; b < workers; b++ {
				if a == b {
					continue
				}
				for d := 0; d < days; d++ {
					for s := 0; s < shifts; s++ {
						r.paired[r.pairedOffset(a, b, d, s)] = m.NewIntVar(0, ub,
							fmt.Sprintf("paired_n%d_n%d_d%d_s%d", a, b, d, s))
					}
				}
			}
		}
	}

	return r, nil
}

// Period 返回周期
func (r *Registry) Period() model.PlanningPeriod { return r.period }

// Model 返回模型
func (r *Registry) Model() *cpmodel.Model { return r.model }

// InRange 检查 (员工, 天, 班次) 是否有效
func (r *Registry) InRange(w, d, s int) bool {
	return w >= 0 && w < r.period.Workers() &&
		d >= 0 && d < r.period.Days() &&
		s >= 0 && s < r.period.Shifts()
}

// Shift 返回员工 w 在第 d 天班次 s 的变量，越界时 panic
func (r *Registry) Shift(w, d, s int) cpmodel.BoolVar {
	if !r.InRange(w, d, s) {
		panic(fmt.Sprintf("shift key (%d,%d,%d) out of range", w, d, s))
	}
	return r.shifts[(w*r.period.Days()+d)*r.period.Shifts()+s]
}

// Lookup 返回班次变量，越界时 ok 为 false
func (r *Registry) Lookup(w, d, s int) (cpmodel.BoolVar, bool) {
	if !r.InRange(w, d, s) {
		return cpmodel.BoolVar{}, false
	}
	return r.Shift(w, d, s), true
}

// AllShifts 返回全部班次变量
func (r *Registry) AllShifts() []cpmodel.BoolVar {
	return append([]cpmodel.BoolVar(nil), r.shifts...)
}

// DayShift 某天某班次所有员工的变量
func (r *Registry) DayShift(d, s int) []cpmodel.BoolVar {
	vars := make([]cpmodel.BoolVar, 0, r.period.Workers())
	for w := 0; w < r.period.Workers(); w++ {
		vars = append(vars, r.Shift(w, d, s))
	}
	return vars
}

// WorkerDay 员工某天所有班次的变量
func (r *Registry) WorkerDay(w, d int) []cpmodel.BoolVar {
	vars := make([]cpmodel.BoolVar, 0, r.period.Shifts())
	for s := 0; s < r.period.Shifts(); s++ {
		vars = append(vars, r.Shift(w, d, s))
	}
	return vars
}

// Window 员工从 start 开始连续 size 天的所有班次变量
func (r *Registry) Window(w, start, size int) []cpmodel.BoolVar {
	vars := make([]cpmodel.BoolVar, 0, size*r.period.Shifts())
	for d := start; d < start+size; d++ {
		vars = append(vars, r.WorkerDay(w, d)...)
	}
	return vars
}

// Worker 员工整个周期的所有班次变量
func (r *Registry) Worker(w int) []cpmodel.BoolVar {
	return r.Window(w, 0, r.period.Days())
}

// HasVacations 是否分配了假期变量
func (r *Registry) HasVacations() bool { return r.vacations != nil }

// Vacation 返回员工 w 第 v 个假期槽位变量
func (r *Registry) Vacation(w, v int) cpmodel.BoolVar {
	slots := r.period.VacationSlots()
	if r.vacations == nil || w < 0 || w >= r.period.Workers() || v < 0 || v >= slots {
		panic(fmt.Sprintf("vacation key (%d,%d) out of range", w, v))
	}
	return r.vacations[w*slots+v]
}

// WorkerVacations 员工所有假期槽位变量
func (r *Registry) WorkerVacations(w int) []cpmodel.BoolVar {
	slots := r.period.VacationSlots()
	vars := make([]cpmodel.BoolVar, 0, slots)
	for v := 0; v < slots; v++ {
		vars = append(vars, r.Vacation(w, v))
	}
	return vars
}

// HasAffinity 是否启用了亲和度
func (r *Registry) HasAffinity() bool { return r.affinity != nil }

// Affinity 返回亲和度矩阵，未启用时为 nil
func (r *Registry) Affinity() *model.AffinityMatrix { return r.affinity }

func (r *Registry) pairedOffset(a, b, d, s int) int {
	n, days, shifts := r.period.Workers(), r.period.Days(), r.period.Shifts()
	return ((a*n+b)*days+d)*shifts + s
}

// Paired 返回搭档辅助变量，a == b 或越界时 panic
func (r *Registry) Paired(a, b, d, s int) cpmodel.IntVar {
	if r.paired == nil || a == b || !r.InRange(a, d, s) || !r.InRange(b, d, s) {
		panic(fmt.Sprintf("paired key (%d,%d,%d,%d) out of range", a, b, d, s))
	}
	return r.paired[r.pairedOffset(a, b, d, s)]
}

// EachPair 按固定顺序遍历所有 (a, b, 天, 班次)，a != b
func (r *Registry) EachPair(fn func(a, b, d, s int)) {
	if r.paired == nil {
		return
	}
	n, days, shifts := r.period.Workers(), r.period.Days(), r.period.Shifts()
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			for d := 0; d < days; d++ {
				for s := 0; s < shifts; s++ {
					fn(a, b, d, s)
				}
			}
		}
	}
}
