package builtin

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// VacationRule 假期配额：每人启用的假期槽位数等于配额
type VacationRule struct {
	*BaseRule
}

// NewVacationRule 创建假期配额规则
func NewVacationRule() *VacationRule {
	return &VacationRule{
		BaseRule: NewBaseRule("假期配额", constraint.TypeVacationQuota, constraint.CategoryHard),
	}
}

// Apply 为每位员工添加假期数等式
func (c *VacationRule) Apply(ctx *constraint.Context) error {
	p := ctx.Period()
	if !p.HasVacation() {
		return nil
	}
	if !ctx.Registry.HasVacations() {
		return apperrors.ModelInvalid("周期设置了假期配额，但注册表没有假期变量")
	}

	m := ctx.Registry.Model()
	quota := int64(p.VacationQuota())
	for w := 0; w < p.Workers(); w++ {
		m.AddEquality(cpmodel.Sum(ctx.Registry.WorkerVacations(w)...), quota)
	}
	return nil
}

// Evaluate 检查每人假期数
func (c *VacationRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	p := ctx.Period()
	if !p.HasVacation() {
		return nil
	}
	if r == nil || !r.HasVacations() {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, "排班表缺少假期信息")}
	}

	var violations []constraint.ViolationDetail
	for w := 0; w < p.Workers(); w++ {
		if got := r.VacationCount(w); got != p.VacationQuota() {
			violations = append(violations, c.CreateViolation(w, -1, -1,
				fmt.Sprintf("员工 %d 休假 %d 天，配额 %d 天", w, got, p.VacationQuota())))
		}
	}
	return violations
}
