package constraint

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
)

// Manager 约束规则管理器
type Manager struct {
	rules []Rule
	mu    sync.RWMutex
}

// NewManager 创建约束管理器
func NewManager(rules ...Rule) *Manager {
	m := &Manager{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		m.Register(r)
	}
	return m
}

// Register 注册规则，同类型规则会被替换
func (m *Manager) Register(r Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.rules {
		if existing.Type() == r.Type() {
			m.rules[i] = r
			return
		}
	}

	m.rules = append(m.rules, r)

	// 业务规则在前，辅助约束在后；同类别保持注册顺序
	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].Category() == CategoryHard && m.rules[j].Category() != CategoryHard
	})
}

// Unregister 注销规则
func (m *Manager) Unregister(t Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rules {
		if r.Type() == t {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return
		}
	}
}

// Get 获取规则
func (m *Manager) Get(t Type) Rule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rules {
		if r.Type() == t {
			return r
		}
	}
	return nil
}

// Has 是否注册了该类型规则
func (m *Manager) Has(t Type) bool {
	return m.Get(t) != nil
}

// GetAll 获取所有规则
func (m *Manager) GetAll() []Rule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Rule, len(m.rules))
	copy(result, m.rules)
	return result
}

// GetByCategory 按类别获取规则
func (m *Manager) GetByCategory(cat Category) []Rule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Rule
	for _, r := range m.rules {
		if r.Category() == cat {
			result = append(result, r)
		}
	}
	return result
}

// Apply 按顺序把所有规则应用到模型，遇到第一个错误即停止
func (m *Manager) Apply(ctx *Context) error {
	if ctx == nil || ctx.Registry == nil {
		return apperrors.New(apperrors.CodeInternal, "建模上下文缺少变量注册表")
	}
	for _, r := range m.GetAll() {
		if err := r.Apply(ctx); err != nil {
			if apperrors.GetCode(err) != apperrors.CodeUnknown {
				return err
			}
			return apperrors.Wrap(err, apperrors.CodeModelInvalid, fmt.Sprintf("应用规则 '%s' 失败", r.Name()))
		}
	}
	return nil
}

// Evaluate 用所有规则审核排班表
func (m *Manager) Evaluate(ctx *Context, roster *model.Roster) *Result {
	result := &Result{
		IsValid:    true,
		Violations: make([]ViolationDetail, 0),
	}

	for _, r := range m.GetAll() {
		details := r.Evaluate(ctx, roster)
		if len(details) == 0 {
			continue
		}
		result.IsValid = false
		result.Violations = append(result.Violations, details...)
		if ctx != nil && ctx.Logger != nil {
			for _, d := range details {
				ctx.Logger.ConstraintViolation(r.Name(), d.Message)
			}
		}
	}

	return result
}

// Clear 清除所有规则
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = make([]Rule, 0)
}

// Count 返回规则数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// Summary 返回规则摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard := 0
	auxiliary := 0
	types := make([]string, 0, len(m.rules))
	for _, r := range m.rules {
		if r.Category() == CategoryHard {
			hard++
		} else {
			auxiliary++
		}
		types = append(types, string(r.Type()))
	}

	return map[string]interface{}{
		"total":     len(m.rules),
		"hard":      hard,
		"auxiliary": auxiliary,
		"types":     types,
	}
}
