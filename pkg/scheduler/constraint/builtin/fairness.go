package builtin

import (
	"fmt"

	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// FairnessRule 公平分配：每人总班次数落在 [min, max]
// min = 总岗位 / 人数，不能整除时 max = min + 1
type FairnessRule struct {
	*BaseRule
}

// NewFairnessRule 创建公平分配规则
func NewFairnessRule() *FairnessRule {
	return &FairnessRule{
		BaseRule: NewBaseRule("工作量公平分配", constraint.TypeFairnessWindow, constraint.CategoryHard),
	}
}

// Apply 为每位员工添加总班次上下限
func (c *FairnessRule) Apply(ctx *constraint.Context) error {
	p := ctx.Period()
	m := ctx.Registry.Model()
	min, max := p.FairnessBounds()

	for w := 0; w < p.Workers(); w++ {
		m.AddLinearConstraint(cpmodel.Sum(ctx.Registry.Worker(w)...), int64(min), int64(max))
	}
	return nil
}

// Evaluate 检查每人总班次数
func (c *FairnessRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	p := ctx.Period()
	if !sameShape(p, r) {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, "排班表维度与周期不一致")}
	}

	min, max := p.FairnessBounds()
	var violations []constraint.ViolationDetail
	for w := 0; w < p.Workers(); w++ {
		if got := r.WorkerTotal(w); got < min || got > max {
			violations = append(violations, c.CreateViolation(w, -1, -1,
				fmt.Sprintf("员工 %d 共 %d 个班次，应在 [%d, %d] 之间", w, got, min, max)))
		}
	}
	return violations
}
