// Package constraint 定义约束规则接口和管理器
package constraint

import (
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/registry"
)

// Type 约束类型标识
type Type string

const (
	TypeCoverage              Type = "exact_coverage"
	TypeShiftExclusivity      Type = "shift_exclusivity"
	TypeFairnessWindow        Type = "fairness_window"
	TypeMinActivityWindow     Type = "min_activity_window"
	TypeVacationQuota         Type = "vacation_quota"
	TypeContinuityForbid      Type = "continuity_forbid"
	TypeAffinityLinearization Type = "affinity_linearization"
)

// Category 约束类别
type Category string

const (
	CategoryHard      Category = "hard"      // 业务规则，必须满足
	CategoryAuxiliary Category = "auxiliary" // 为目标函数服务的辅助约束
)

// Rule 约束规则：把一类业务规则翻译成模型约束，并能审核求解结果
type Rule interface {
	// Name 返回规则名称
	Name() string

	// Type 返回规则类型
	Type() Type

	// Category 返回规则类别
	Category() Category

	// Apply 向模型添加约束
	Apply(ctx *Context) error

	// Evaluate 审核一个排班表，返回违反详情
	Evaluate(ctx *Context, r *model.Roster) []ViolationDetail
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type   `json:"constraint_type"`
	ConstraintName string `json:"constraint_name"`
	Worker         int    `json:"worker"`
	Day            int    `json:"day"`
	Shift          int    `json:"shift"`
	Message        string `json:"message"`
	Severity       string `json:"severity"` // error/warning
}

// Context 建模上下文
type Context struct {
	Registry *registry.Registry

	// Continuity 上一周期的衔接状态，规则只读
	Continuity model.Continuity

	Logger *logger.SchedulerLogger
}

// NewContext 创建建模上下文
func NewContext(reg *registry.Registry, continuity model.Continuity) *Context {
	return &Context{
		Registry:   reg,
		Continuity: continuity.Clone(),
		Logger:     logger.NewSchedulerLogger(),
	}
}

// Period 返回周期
func (c *Context) Period() model.PlanningPeriod {
	return c.Registry.Period()
}

// Result 审核结果
type Result struct {
	IsValid    bool              `json:"is_valid"`
	Violations []ViolationDetail `json:"violations"`
}
