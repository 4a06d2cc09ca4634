package builtin

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
)

// AffinityRule 亲和度线性化：paired(a,b,d,s) = weight(a,b) * x(a,d,s) * x(b,d,s)
type AffinityRule struct {
	*BaseRule
}

// NewAffinityRule 创建亲和度线性化规则
func NewAffinityRule() *AffinityRule {
	return &AffinityRule{
		BaseRule: NewBaseRule("搭档亲和度", constraint.TypeAffinityLinearization, constraint.CategoryAuxiliary),
	}
}

// Apply 为每个有序搭档 (a, b) 和每个 (天, 班次) 添加乘积等式
func (c *AffinityRule) Apply(ctx *constraint.Context) error {
	reg := ctx.Registry
	if !reg.HasAffinity() {
		return apperrors.ModelInvalid("未启用亲和度的注册表不能应用亲和度规则")
	}

	m := reg.Model()
	matrix := reg.Affinity()
	reg.EachPair(func(a, b, d, s int) {
		m.AddMultiplicationEquality(reg.Paired(a, b, d, s), int64(matrix.Weight(a, b)),
			reg.Shift(a, d, s), reg.Shift(b, d, s))
	})
	return nil
}

// Evaluate 检查提取的搭档贡献与同班情况是否一致
func (c *AffinityRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	reg := ctx.Registry
	if !reg.HasAffinity() || r == nil || r.Pairings == nil {
		return nil
	}

	matrix := reg.Affinity()
	var violations []constraint.ViolationDetail
	for _, pr := range r.Pairings {
		if !r.Works(pr.WorkerA, pr.Day, pr.Shift) || !r.Works(pr.WorkerB, pr.Day, pr.Shift) {
			violations = append(violations, c.CreateViolation(pr.WorkerA, pr.Day, pr.Shift,
				fmt.Sprintf("员工 %d 与 %d 不在同一班次，却记录了亲和度", pr.WorkerA, pr.WorkerB)))
			continue
		}
		if want := int64(matrix.Weight(pr.WorkerA, pr.WorkerB)); pr.Value != want {
			violations = append(violations, c.CreateViolation(pr.WorkerA, pr.Day, pr.Shift,
				fmt.Sprintf("员工 %d 与 %d 的亲和度为 %d，期望 %d", pr.WorkerA, pr.WorkerB, pr.Value, want)))
		}
	}
	return violations
}
