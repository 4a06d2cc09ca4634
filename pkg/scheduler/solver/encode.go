package solver

import (
	"fmt"
	"sort"

	"github.com/crillab/gophersat/solver"

	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// 变量映射：布尔变量 i 对应 SAT 变量 i+1，
// 每个整数变量对应一个指示变量 y，取值为 Coeff * y。

// weighted 归一化后的伪布尔和：offset + Σ weights[i] * lits[i]，权重全为正
type weighted struct {
	lits    []int
	weights []int
	offset  int64
	sum     int64
}

// cardGroup 至多 k 个为真的正文字组（用于估计目标上界）
type cardGroup struct {
	vars []int
	k    int64
}

type encoding struct {
	numBool  int
	numVars  int
	intLit   []int
	intCoeff []int64

	constrs []solver.PBConstr
	groups  []cardGroup
	unsat   bool
}

func encode(m *cpmodel.Model) (*encoding, error) {
	e := &encoding{
		numBool:  m.NumBoolVars(),
		intLit:   make([]int, m.NumIntVars()),
		intCoeff: make([]int64, m.NumIntVars()),
	}
	e.numVars = e.numBool

	// 先为整数变量分配指示变量，线性约束可能引用它们
	for _, c := range m.Constraints() {
		mul, ok := c.(cpmodel.MultiplicationEquality)
		if !ok {
			continue
		}
		idx := mul.Target.Index()
		if e.intLit[idx] != 0 {
			return nil, fmt.Errorf("int var %q is defined by more than one multiplication", m.IntVarName(mul.Target))
		}
		e.numVars++
		e.intLit[idx] = e.numVars
		e.intCoeff[idx] = mul.Coeff
		e.encodeProduct(m, mul)
	}
	for idx, lit := range e.intLit {
		if lit == 0 {
			return nil, fmt.Errorf("int var %q is not defined by a multiplication", m.IntVarName(m.IntVarAt(idx)))
		}
	}

	for _, c := range m.Constraints() {
		switch ct := c.(type) {
		case cpmodel.ExactlyOne:
			e.addLinear(cpmodel.Sum(ct.Vars...), 1, 1)
		case cpmodel.AtMostOne:
			e.addLinear(cpmodel.Sum(ct.Vars...), cpmodel.MinBound, 1)
		case cpmodel.Linear:
			e.addLinear(ct.Expr, ct.Lo, ct.Hi)
		case cpmodel.MultiplicationEquality:
		default:
			return nil, fmt.Errorf("unsupported constraint %T", c)
		}
	}
	return e, nil
}

// encodeProduct y <-> AND(factors)，并按取值范围固定 y
func (e *encoding) encodeProduct(m *cpmodel.Model, mul cpmodel.MultiplicationEquality) {
	y := e.intLit[mul.Target.Index()]

	back := make([]int, 0, len(mul.Factors)+1)
	back = append(back, y)
	for _, f := range mul.Factors {
		lit := f.Index() + 1
		e.clause(-y, lit)
		back = append(back, -lit)
	}
	e.clause(back...)

	lo, hi := m.IntVarDomain(mul.Target)
	if 0 < lo || 0 > hi {
		e.clause(y)
	}
	if mul.Coeff < lo || mul.Coeff > hi {
		e.clause(-y)
	}
}

func (e *encoding) clause(lits ...int) {
	if len(lits) == 0 {
		e.unsat = true
		return
	}
	e.constrs = append(e.constrs, solver.PropClause(append([]int(nil), lits...)...))
}

// normalize 合并同一变量的项，负系数转为取反文字
func (e *encoding) normalize(expr *cpmodel.LinearExpr) weighted {
	coeffs := make(map[int]int64)
	var order []int
	for _, t := range expr.Terms() {
		v, c := t.Index+1, t.Coeff
		if t.Kind == cpmodel.TermInt {
			v, c = e.intLit[t.Index], t.Coeff*e.intCoeff[t.Index]
		}
		if _, seen := coeffs[v]; !seen {
			order = append(order, v)
		}
		coeffs[v] += c
	}

	w := weighted{offset: expr.Offset()}
	for _, v := range order {
		c := coeffs[v]
		switch {
		case c > 0:
			w.lits = append(w.lits, v)
			w.weights = append(w.weights, int(c))
			w.sum += c
		case c < 0:
			w.lits = append(w.lits, -v)
			w.weights = append(w.weights, int(-c))
			w.sum -= c
			w.offset += c
		}
	}
	return w
}

// atLeast 生成 Σ >= target 的约束，ok 为 false 表示不可满足，nil 表示恒成立
func (w weighted) atLeast(target int64) (c *solver.PBConstr, ok bool) {
	need := target - w.offset
	if need > w.sum {
		return nil, false
	}
	if need <= 0 {
		return nil, true
	}
	pb := solver.GtEq(append([]int(nil), w.lits...), append([]int(nil), w.weights...), int(need))
	return &pb, true
}

// atMost 生成 Σ <= target 的约束
func (w weighted) atMost(target int64) (c *solver.PBConstr, ok bool) {
	capacity := target - w.offset
	if capacity < 0 {
		return nil, false
	}
	if capacity >= w.sum {
		return nil, true
	}
	pb := solver.LtEq(append([]int(nil), w.lits...), append([]int(nil), w.weights...), int(capacity))
	return &pb, true
}

func (w weighted) unitPositive() bool {
	for i, lit := range w.lits {
		if lit < 0 || w.weights[i] != 1 {
			return false
		}
	}
	return true
}

func (e *encoding) addLinear(expr *cpmodel.LinearExpr, lo, hi int64) {
	w := e.normalize(expr)

	if lo != cpmodel.MinBound {
		pb, ok := w.atLeast(lo)
		if !ok {
			e.unsat = true
			return
		}
		if pb != nil {
			e.constrs = append(e.constrs, *pb)
		}
	}

	if hi != cpmodel.MaxBound {
		pb, ok := w.atMost(hi)
		if !ok {
			e.unsat = true
			return
		}
		if pb != nil {
			e.constrs = append(e.constrs, *pb)
		}
		if w.unitPositive() && len(w.lits) > 0 {
			e.groups = append(e.groups, cardGroup{vars: append([]int(nil), w.lits...), k: hi - w.offset})
		}
	}
}

// upperBound 估计 w 的上界：不相交的基数组内只计前 k 大的权重
func (e *encoding) upperBound(w weighted) int64 {
	weightOf := make(map[int]int64, len(w.lits))
	for i, lit := range w.lits {
		if lit > 0 {
			weightOf[lit] += int64(w.weights[i])
		}
	}

	bound := w.offset + w.sum
	used := make(map[int]bool)
	for _, g := range e.groups {
		disjoint := true
		var inGroup []int64
		for _, v := range g.vars {
			if used[v] {
				disjoint = false
				break
			}
			if wt, ok := weightOf[v]; ok {
				inGroup = append(inGroup, wt)
			}
		}
		if !disjoint || int64(len(inGroup)) <= g.k {
			continue
		}
		for _, v := range g.vars {
			used[v] = true
		}
		sort.Slice(inGroup, func(i, j int) bool { return inGroup[i] > inGroup[j] })
		for _, wt := range inGroup[g.k:] {
			bound -= wt
		}
	}
	return bound
}

// blocking 排除当前布尔变量取值的子句
func (e *encoding) blocking(model []bool) solver.PBConstr {
	lits := make([]int, e.numBool)
	for i := 0; i < e.numBool; i++ {
		if i < len(model) && model[i] {
			lits[i] = -(i + 1)
		} else {
			lits[i] = i + 1
		}
	}
	return solver.PropClause(lits...)
}

func clonePB(c solver.PBConstr) solver.PBConstr {
	return solver.PBConstr{
		Lits:    append([]int(nil), c.Lits...),
		Weights: append([]int(nil), c.Weights...),
		AtLeast: c.AtLeast,
	}
}
