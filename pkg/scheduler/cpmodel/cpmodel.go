// Package cpmodel 提供与求解器无关的约束模型：变量、约束形式与目标函数
package cpmodel

import (
	"fmt"
	"math"
)

// 线性约束的无界取值
const (
	MinBound int64 = math.MinInt64
	MaxBound int64 = math.MaxInt64
)

// BoolVar 布尔决策变量
type BoolVar struct {
	index int
}

// Index 变量序号
func (v BoolVar) Index() int { return v.index }

// IntVar 有界整数辅助变量
type IntVar struct {
	index int
}

// Index 变量序号
func (v IntVar) Index() int { return v.index }

// Values 解中变量取值的只读视图
type Values interface {
	BoolValue(v BoolVar) bool
	IntValue(v IntVar) int64
}

// Kind 约束种类
type Kind string

const (
	KindExactlyOne             Kind = "exactly_one"
	KindAtMostOne              Kind = "at_most_one"
	KindLinear                 Kind = "linear"
	KindMultiplicationEquality Kind = "multiplication_equality"
)

// Constraint 约束
type Constraint interface {
	Kind() Kind
}

// ExactlyOne 恰好一个为真
type ExactlyOne struct {
	Vars []BoolVar
}

// Kind 约束种类
func (ExactlyOne) Kind() Kind { return KindExactlyOne }

// AtMostOne 至多一个为真
type AtMostOne struct {
	Vars []BoolVar
}

// Kind 约束种类
func (AtMostOne) Kind() Kind { return KindAtMostOne }

// Linear lo <= expr <= hi
type Linear struct {
	Expr *LinearExpr
	Lo   int64
	Hi   int64
}

// Kind 约束种类
func (Linear) Kind() Kind { return KindLinear }

// MultiplicationEquality target == Coeff * factors[0] * factors[1] * ...
type MultiplicationEquality struct {
	Target  IntVar
	Coeff   int64
	Factors []BoolVar
}

// Kind 约束种类
func (MultiplicationEquality) Kind() Kind { return KindMultiplicationEquality }

// Sense 优化方向
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

// String 返回方向名称
func (s Sense) String() string {
	if s == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Objective 目标函数
type Objective struct {
	Expr  *LinearExpr
	Sense Sense
}

type intDomain struct {
	name   string
	lo, hi int64
}

// Model 约束模型
type Model struct {
	name        string
	boolNames   []string
	intVars     []intDomain
	constraints []Constraint
	objective   *Objective
}

// NewModel 创建空模型
func NewModel(name string) *Model {
	return &Model{name: name}
}

// Name 模型名称
func (m *Model) Name() string { return m.name }

// NewBoolVar 新建布尔变量
func (m *Model) NewBoolVar(name string) BoolVar {
	m.boolNames = append(m.boolNames, name)
	return BoolVar{index: len(m.boolNames) - 1}
}

// NewIntVar 新建整数变量，取值范围 [lo, hi]
func (m *Model) NewIntVar(lo, hi int64, name string) IntVar {
	m.intVars = append(m.intVars, intDomain{name: name, lo: lo, hi: hi})
	return IntVar{index: len(m.intVars) - 1}
}

// BoolVarAt 按序号返回布尔变量
func (m *Model) BoolVarAt(i int) BoolVar { return BoolVar{index: i} }

// IntVarAt 按序号返回整数变量
func (m *Model) IntVarAt(i int) IntVar { return IntVar{index: i} }

// NumBoolVars 布尔变量数
func (m *Model) NumBoolVars() int { return len(m.boolNames) }

// NumIntVars 整数变量数
func (m *Model) NumIntVars() int { return len(m.intVars) }

// BoolVarName 布尔变量名称
func (m *Model) BoolVarName(v BoolVar) string { return m.boolNames[v.index] }

// IntVarName 整数变量名称
func (m *Model) IntVarName(v IntVar) string { return m.intVars[v.index].name }

// IntVarDomain 整数变量取值范围
func (m *Model) IntVarDomain(v IntVar) (lo, hi int64) {
	d := m.intVars[v.index]
	return d.lo, d.hi
}

// AddExactlyOne 添加恰好一个约束
func (m *Model) AddExactlyOne(vars ...BoolVar) {
	m.constraints = append(m.constraints, ExactlyOne{Vars: append([]BoolVar(nil), vars...)})
}

// AddAtMostOne 添加至多一个约束
func (m *Model) AddAtMostOne(vars ...BoolVar) {
	m.constraints = append(m.constraints, AtMostOne{Vars: append([]BoolVar(nil), vars...)})
}

// AddLinearConstraint 添加 lo <= expr <= hi
func (m *Model) AddLinearConstraint(expr *LinearExpr, lo, hi int64) {
	m.constraints = append(m.constraints, Linear{Expr: expr.Clone(), Lo: lo, Hi: hi})
}

// AddEquality 添加 expr == value
func (m *Model) AddEquality(expr *LinearExpr, value int64) {
	m.AddLinearConstraint(expr, value, value)
}

// AddLessOrEqual 添加 expr <= value
func (m *Model) AddLessOrEqual(expr *LinearExpr, value int64) {
	m.AddLinearConstraint(expr, MinBound, value)
}

// AddGreaterOrEqual 添加 expr >= value
func (m *Model) AddGreaterOrEqual(expr *LinearExpr, value int64) {
	m.AddLinearConstraint(expr, value, MaxBound)
}

// AddMultiplicationEquality 添加 target == coeff * 各布尔因子之积
func (m *Model) AddMultiplicationEquality(target IntVar, coeff int64, factors ...BoolVar) {
	m.constraints = append(m.constraints, MultiplicationEquality{
		Target:  target,
		Coeff:   coeff,
		Factors: append([]BoolVar(nil), factors...),
	})
}

// Maximize 设置最大化目标
func (m *Model) Maximize(expr *LinearExpr) {
	m.objective = &Objective{Expr: expr.Clone(), Sense: Maximize}
}

// Minimize 设置最小化目标
func (m *Model) Minimize(expr *LinearExpr) {
	m.objective = &Objective{Expr: expr.Clone(), Sense: Minimize}
}

// ClearObjective 清除目标函数（纯可行性模式）
func (m *Model) ClearObjective() {
	m.objective = nil
}

// Objective 返回目标函数，无目标时为 nil
func (m *Model) Objective() *Objective { return m.objective }

// HasObjective 是否设置了目标函数
func (m *Model) HasObjective() bool { return m.objective != nil }

// Constraints 返回所有约束
func (m *Model) Constraints() []Constraint { return m.constraints }

// Summary 按种类统计约束数量
func (m *Model) Summary() map[Kind]int {
	summary := make(map[Kind]int)
	for _, c := range m.constraints {
		summary[c.Kind()]++
	}
	return summary
}

// Validate 检查变量引用是否越界、取值范围是否合法
func (m *Model) Validate() error {
	for i, d := range m.intVars {
		if d.lo > d.hi {
			return fmt.Errorf("int var %q (#%d) has empty domain [%d,%d]", d.name, i, d.lo, d.hi)
		}
	}
	for i, c := range m.constraints {
		if err := m.validateConstraint(c); err != nil {
			return fmt.Errorf("constraint #%d (%s): %w", i, c.Kind(), err)
		}
	}
	if m.objective != nil {
		if err := m.validateExpr(m.objective.Expr); err != nil {
			return fmt.Errorf("objective: %w", err)
		}
	}
	return nil
}

func (m *Model) validateConstraint(c Constraint) error {
	switch ct := c.(type) {
	case ExactlyOne:
		return m.validateBools(ct.Vars)
	case AtMostOne:
		return m.validateBools(ct.Vars)
	case Linear:
		if ct.Lo > ct.Hi {
			return fmt.Errorf("empty range [%d,%d]", ct.Lo, ct.Hi)
		}
		return m.validateExpr(ct.Expr)
	case MultiplicationEquality:
		if ct.Target.index < 0 || ct.Target.index >= len(m.intVars) {
			return fmt.Errorf("unknown int var #%d", ct.Target.index)
		}
		return m.validateBools(ct.Factors)
	default:
		return fmt.Errorf("unsupported constraint %T", c)
	}
}

func (m *Model) validateBools(vars []BoolVar) error {
	for _, v := range vars {
		if v.index < 0 || v.index >= len(m.boolNames) {
			return fmt.Errorf("unknown bool var #%d", v.index)
		}
	}
	return nil
}

func (m *Model) validateExpr(e *LinearExpr) error {
	if e == nil {
		return fmt.Errorf("nil expression")
	}
	for _, t := range e.terms {
		switch t.Kind {
		case TermBool:
			if t.Index < 0 || t.Index >= len(m.boolNames) {
				return fmt.Errorf("unknown bool var #%d", t.Index)
			}
		case TermInt:
			if t.Index < 0 || t.Index >= len(m.intVars) {
				return fmt.Errorf("unknown int var #%d", t.Index)
			}
		}
	}
	return nil
}
