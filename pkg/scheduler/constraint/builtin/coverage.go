package builtin

import (
	"fmt"

	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// CoverageRule 精确覆盖：每天每个班次恰好安排 coverage 人
type CoverageRule struct {
	*BaseRule
}

// NewCoverageRule 创建覆盖规则
func NewCoverageRule() *CoverageRule {
	return &CoverageRule{
		BaseRule: NewBaseRule("班次精确覆盖", constraint.TypeCoverage, constraint.CategoryHard),
	}
}

// Apply 为每个 (天, 班次) 添加人数等式
func (c *CoverageRule) Apply(ctx *constraint.Context) error {
	p := ctx.Period()
	m := ctx.Registry.Model()
	coverage := int64(p.Coverage())

	for d := 0; d < p.Days(); d++ {
		for s := 0; s < p.Shifts(); s++ {
			vars := ctx.Registry.DayShift(d, s)
			if coverage == 1 {
				m.AddExactlyOne(vars...)
				continue
			}
			m.AddEquality(cpmodel.Sum(vars...), coverage)
		}
	}
	return nil
}

// Evaluate 检查每个班次的人数
func (c *CoverageRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	p := ctx.Period()
	if !sameShape(p, r) {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, "排班表维度与周期不一致")}
	}

	var violations []constraint.ViolationDetail
	for d := 0; d < p.Days(); d++ {
		for s := 0; s < p.Shifts(); s++ {
			if got := r.Coverage(d, s); got != p.Coverage() {
				violations = append(violations, c.CreateViolation(-1, d, s,
					fmt.Sprintf("第 %d 天班次 %d 安排 %d 人，要求 %d 人", d, s, got, p.Coverage())))
			}
		}
	}
	return violations
}
