package builtin

import (
	"github.com/paiban/rostering/pkg/scheduler/constraint"
)

// RuleSet 规则组合
// 覆盖与班次互斥总是注册，其余规则按需开启
type RuleSet struct {
	StrictExclusivity bool `json:"strict_exclusivity"`
	Fairness          bool `json:"fairness"`
	MinActivity       bool `json:"min_activity"`
	Vacation          bool `json:"vacation"`
	Affinity          bool `json:"affinity"`
}

// Rules 按规则组合创建规则列表
func (rs RuleSet) Rules() []constraint.Rule {
	rules := []constraint.Rule{
		NewCoverageRule(),
		NewExclusivityRule(rs.StrictExclusivity),
	}
	if rs.Fairness {
		rules = append(rules, NewFairnessRule())
	}
	if rs.MinActivity {
		rules = append(rules, NewMinActivityRule())
	}
	if rs.Vacation {
		rules = append(rules, NewVacationRule())
	}
	if rs.Affinity {
		rules = append(rules, NewAffinityRule())
	}
	return rules
}

// Register 把规则组合注册到管理器
func (rs RuleSet) Register(manager *constraint.Manager) {
	for _, rule := range rs.Rules() {
		manager.Register(rule)
	}
}

// NewManager 按规则组合创建管理器
func (rs RuleSet) NewManager() *constraint.Manager {
	manager := constraint.NewManager()
	rs.Register(manager)
	return manager
}

// RegisterContinuity 注册跨周期衔接规则（滚动排班使用）
func RegisterContinuity(manager *constraint.Manager) {
	manager.Register(NewContinuityRule())
}
