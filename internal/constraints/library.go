// Package constraints 约束库：内置规则的说明与方案文件参数
package constraints

import (
	"sort"

	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/scenario"
)

// ConstraintParam 约束参数定义（对应方案文件中的键）
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, bool, list
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        constraint.Type     `json:"name"`
	DisplayName string              `json:"display_name"`
	Category    constraint.Category `json:"category"`
	// Switch 方案文件 rules 下的开关，为空表示总是启用
	Switch      string            `json:"switch,omitempty"`
	Description string            `json:"description"`
	Scenarios   []string          `json:"scenarios"` // 使用该规则的预置场景
	Params      []ConstraintParam `json:"params"`
}

// Optional 是否可以在方案文件中关闭
func (d ConstraintDefinition) Optional() bool {
	return d.Switch != ""
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

var allScenarios = []string{scenario.NameAffinity, scenario.NameBasic, scenario.NameRequests, scenario.NameRolling}

// GetLibrary 获取完整的约束库
func GetLibrary() []ConstraintDefinition {
	return []ConstraintDefinition{
		{
			Name:        constraint.TypeCoverage,
			DisplayName: "班次覆盖人数",
			Category:    constraint.CategoryHard,
			Description: "每天每个班次恰好安排指定人数。",
			Scenarios:   allScenarios,
			Params: []ConstraintParam{
				{Name: "period.coverage", Type: "int", Description: "每班次人数", Default: "1", Min: "1"},
			},
		},
		{
			Name:        constraint.TypeShiftExclusivity,
			DisplayName: "每日班次上限",
			Category:    constraint.CategoryHard,
			Description: "员工每天至多上规定数量的班次；严格模式下每天恰好一个班次。",
			Scenarios:   allScenarios,
			Params: []ConstraintParam{
				{Name: "period.shiftsPerWorkerPerDay", Type: "int", Description: "每人每天班次上限", Default: "1", Min: "1"},
				{Name: "rules.strictExclusivity", Type: "bool", Description: "每天恰好一个班次", Default: "false"},
			},
		},
		{
			Name:        constraint.TypeFairnessWindow,
			DisplayName: "工作量均衡",
			Category:    constraint.CategoryHard,
			Switch:      "rules.fairness",
			Description: "每位员工的班次总数落在 floor(总岗位/人数) 与 ceil(总岗位/人数) 之间。",
			Scenarios:   []string{scenario.NameBasic, scenario.NameRequests},
			Params:      []ConstraintParam{},
		},
		{
			Name:        constraint.TypeMinActivityWindow,
			DisplayName: "滑动窗口最少出勤",
			Category:    constraint.CategoryHard,
			Switch:      "rules.minActivity",
			Description: "任意连续若干天内员工至少上指定数量的班次。",
			Scenarios:   []string{scenario.NameAffinity},
			Params: []ConstraintParam{
				{Name: "period.minActivity.windowSize", Type: "int", Description: "窗口天数", Min: "1"},
				{Name: "period.minActivity.minimum", Type: "int", Description: "窗口内最少班次", Min: "1"},
			},
		},
		{
			Name:        constraint.TypeVacationQuota,
			DisplayName: "假期配额",
			Category:    constraint.CategoryHard,
			Switch:      "rules.vacation",
			Description: "每位员工启用的假期槽位数恰好等于配额，假期变量与班次变量相互独立。",
			Scenarios:   []string{scenario.NameAffinity},
			Params: []ConstraintParam{
				{Name: "period.vacationDays", Type: "int", Description: "每人假期天数", Default: "0", Min: "0"},
				{Name: "period.vacationSlots", Type: "int", Description: "假期槽位数，默认等于配额", Min: "0"},
			},
		},
		{
			Name:        constraint.TypeContinuityForbid,
			DisplayName: "跨周期班次衔接",
			Category:    constraint.CategoryHard,
			Description: "上一周期最后一天上过某班次的员工，新周期第一天不能再上同一班次。",
			Scenarios:   allScenarios,
			Params:      []ConstraintParam{},
		},
		{
			Name:        constraint.TypeAffinityLinearization,
			DisplayName: "搭档亲和度",
			Category:    constraint.CategoryAuxiliary,
			Switch:      "rules.affinity",
			Description: "同班搭档的亲和度辅助变量等于静态权重与两人班次变量之积，供亲和度目标使用。",
			Scenarios:   []string{scenario.NameAffinity},
			Params: []ConstraintParam{
				{Name: "rankings", Type: "list", Description: "每位员工对同事的偏好排名"},
				{Name: "affinitySense", Type: "string", Description: "rank_sum 或 mutual_preference", Default: "rank_sum"},
			},
		},
	}
}

// GetByName 按规则类型查找定义
func GetByName(name constraint.Type) (ConstraintDefinition, bool) {
	for _, def := range GetLibrary() {
		if def.Name == name {
			return def, true
		}
	}
	return ConstraintDefinition{}, false
}

// ForScenario 返回预置场景使用的规则，按名称排序
func ForScenario(name string) []ConstraintDefinition {
	var result []ConstraintDefinition
	for _, def := range GetLibrary() {
		for _, s := range def.Scenarios {
			if s == name {
				result = append(result, def)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
