package cpmodel

// TermKind 线性项的变量类型
type TermKind int

const (
	TermBool TermKind = iota
	TermInt
)

// Term 线性项 coeff * var
type Term struct {
	Kind  TermKind
	Index int
	Coeff int64
}

// LinearExpr 线性表达式 sum(coeff * var) + offset
type LinearExpr struct {
	terms  []Term
	offset int64
}

// NewLinearExpr 创建空表达式
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Sum 返回布尔变量之和
func Sum(vars ...BoolVar) *LinearExpr {
	e := NewLinearExpr()
	for _, v := range vars {
		e.Add(v)
	}
	return e
}

// Add 加上一个布尔变量
func (e *LinearExpr) Add(v BoolVar) *LinearExpr {
	return e.AddTerm(v, 1)
}

// AddTerm 加上 coeff * v
func (e *LinearExpr) AddTerm(v BoolVar, coeff int64) *LinearExpr {
	e.terms = append(e.terms, Term{Kind: TermBool, Index: v.index, Coeff: coeff})
	return e
}

// AddIntTerm 加上 coeff * v
func (e *LinearExpr) AddIntTerm(v IntVar, coeff int64) *LinearExpr {
	e.terms = append(e.terms, Term{Kind: TermInt, Index: v.index, Coeff: coeff})
	return e
}

// AddConstant 加上常数
func (e *LinearExpr) AddConstant(c int64) *LinearExpr {
	e.offset += c
	return e
}

// Terms 返回线性项
func (e *LinearExpr) Terms() []Term { return e.terms }

// Offset 返回常数项
func (e *LinearExpr) Offset() int64 { return e.offset }

// Len 线性项数量
func (e *LinearExpr) Len() int { return len(e.terms) }

// Clone 返回副本
func (e *LinearExpr) Clone() *LinearExpr {
	if e == nil {
		return nil
	}
	return &LinearExpr{
		terms:  append([]Term(nil), e.terms...),
		offset: e.offset,
	}
}

// Scale 返回所有系数和常数乘以 k 的新表达式
func (e *LinearExpr) Scale(k int64) *LinearExpr {
	out := &LinearExpr{
		terms:  make([]Term, len(e.terms)),
		offset: e.offset * k,
	}
	for i, t := range e.terms {
		t.Coeff *= k
		out.terms[i] = t
	}
	return out
}

// Evaluate 在给定取值下计算表达式
func (e *LinearExpr) Evaluate(vals Values) int64 {
	total := e.offset
	for _, t := range e.terms {
		switch t.Kind {
		case TermBool:
			if vals.BoolValue(BoolVar{index: t.Index}) {
				total += t.Coeff
			}
		case TermInt:
			total += t.Coeff * vals.IntValue(IntVar{index: t.Index})
		}
	}
	return total
}
