package builtin

import (
	"fmt"

	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// ExclusivityRule 每人每天最多上 shiftsPerWorkerPerDay 个班次
// strict 时必须恰好上满，即每人每天都上班
type ExclusivityRule struct {
	*BaseRule
	strict bool
}

// NewExclusivityRule 创建班次互斥规则
func NewExclusivityRule(strict bool) *ExclusivityRule {
	name := "每日班次上限"
	if strict {
		name = "每日班次固定"
	}
	return &ExclusivityRule{
		BaseRule: NewBaseRule(name, constraint.TypeShiftExclusivity, constraint.CategoryHard),
		strict:   strict,
	}
}

// Strict 是否为等式形式
func (c *ExclusivityRule) Strict() bool { return c.strict }

// Apply 为每个 (员工, 天) 添加班次数约束
func (c *ExclusivityRule) Apply(ctx *constraint.Context) error {
	p := ctx.Period()
	m := ctx.Registry.Model()
	limit := p.ShiftsPerWorkerPerDay()

	for w := 0; w < p.Workers(); w++ {
		for d := 0; d < p.Days(); d++ {
			vars := ctx.Registry.WorkerDay(w, d)
			switch {
			case c.strict && limit == 1:
				m.AddExactlyOne(vars...)
			case c.strict:
				m.AddEquality(cpmodel.Sum(vars...), int64(limit))
			case limit == 1:
				m.AddAtMostOne(vars...)
			default:
				m.AddLessOrEqual(cpmodel.Sum(vars...), int64(limit))
			}
		}
	}
	return nil
}

// Evaluate 检查每人每天的班次数
func (c *ExclusivityRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	p := ctx.Period()
	if !sameShape(p, r) {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, "排班表维度与周期不一致")}
	}

	limit := p.ShiftsPerWorkerPerDay()
	var violations []constraint.ViolationDetail
	for w := 0; w < p.Workers(); w++ {
		for d := 0; d < p.Days(); d++ {
			got := r.DayTotal(w, d)
			if got > limit || (c.strict && got != limit) {
				violations = append(violations, c.CreateViolation(w, d, -1,
					fmt.Sprintf("员工 %d 第 %d 天上 %d 个班次，限制 %d", w, d, got, limit)))
			}
		}
	}
	return violations
}
