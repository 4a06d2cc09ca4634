package builtin

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// ContinuityRule 跨周期衔接：上一周期最后一天上过的班次，本周期第一天不能再上
type ContinuityRule struct {
	*BaseRule
}

// NewContinuityRule 创建衔接规则
func NewContinuityRule() *ContinuityRule {
	return &ContinuityRule{
		BaseRule: NewBaseRule("跨周期班次衔接", constraint.TypeContinuityForbid, constraint.CategoryHard),
	}
}

func (c *ContinuityRule) check(p model.PlanningPeriod, facts model.Continuity) error {
	for w := 0; w < p.Workers(); w++ {
		s, ok := facts.Shift(w)
		if !ok {
			continue
		}
		if s < 0 || s >= p.Shifts() {
			return apperrors.InvalidDimension("Continuity",
				fmt.Sprintf("员工 %d 的衔接班次 %d 超出范围 [0, %d)", w, s, p.Shifts()))
		}
	}
	return nil
}

// Apply 为每个有衔接事实的员工禁止第一天的同一班次，没有事实时不添加约束
func (c *ContinuityRule) Apply(ctx *constraint.Context) error {
	p := ctx.Period()
	if err := c.check(p, ctx.Continuity); err != nil {
		return err
	}

	m := ctx.Registry.Model()
	for w := 0; w < p.Workers(); w++ {
		s, ok := ctx.Continuity.Shift(w)
		if !ok {
			continue
		}
		m.AddEquality(cpmodel.Sum(ctx.Registry.Shift(w, 0, s)), 0)
	}
	return nil
}

// Evaluate 检查第一天是否重复上了衔接班次
func (c *ContinuityRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	p := ctx.Period()
	if err := c.check(p, ctx.Continuity); err != nil {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, err.Error())}
	}
	if !sameShape(p, r) {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, "排班表维度与周期不一致")}
	}

	var violations []constraint.ViolationDetail
	for w := 0; w < p.Workers(); w++ {
		s, ok := ctx.Continuity.Shift(w)
		if ok && r.Works(w, 0, s) {
			violations = append(violations, c.CreateViolation(w, 0, s,
				fmt.Sprintf("员工 %d 上一周期最后一天上班次 %d，本周期第一天不能再上", w, s)))
		}
	}
	return violations
}
