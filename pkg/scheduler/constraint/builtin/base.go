// Package builtin 提供内置排班规则
package builtin

import (
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
)

// BaseRule 规则基类
type BaseRule struct {
	name     string
	typ      constraint.Type
	category constraint.Category
}

// NewBaseRule 创建规则基类
func NewBaseRule(name string, typ constraint.Type, cat constraint.Category) *BaseRule {
	return &BaseRule{
		name:     name,
		typ:      typ,
		category: cat,
	}
}

// Name 返回规则名称
func (b *BaseRule) Name() string { return b.name }

// Type 返回规则类型
func (b *BaseRule) Type() constraint.Type { return b.typ }

// Category 返回规则类别
func (b *BaseRule) Category() constraint.Category { return b.category }

// Evaluate 默认审核实现（辅助约束没有可审核的业务含义）
func (b *BaseRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	return nil
}

// CreateViolation 创建违反详情，不涉及的维度传 -1
func (b *BaseRule) CreateViolation(worker, day, shift int, message string) constraint.ViolationDetail {
	severity := "warning"
	if b.category == constraint.CategoryHard {
		severity = "error"
	}

	return constraint.ViolationDetail{
		ConstraintType: b.typ,
		ConstraintName: b.name,
		Worker:         worker,
		Day:            day,
		Shift:          shift,
		Message:        message,
		Severity:       severity,
	}
}

// sameShape 排班表维度是否与周期一致
func sameShape(p model.PlanningPeriod, r *model.Roster) bool {
	return r != nil && r.Workers == p.Workers() && r.Days == p.Days() && r.Shifts == p.Shifts()
}
