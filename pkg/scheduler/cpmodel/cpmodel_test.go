package cpmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedValues struct {
	bools []bool
	ints  []int64
}

func (f fixedValues) BoolValue(v BoolVar) bool { return f.bools[v.Index()] }
func (f fixedValues) IntValue(v IntVar) int64  { return f.ints[v.Index()] }

func TestModel_Variables(t *testing.T) {
	m := NewModel("demo")
	assert.Equal(t, "demo", m.Name())

	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	x := m.NewIntVar(0, 5, "x")

	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 1, b.Index())
	assert.Equal(t, 2, m.NumBoolVars())
	assert.Equal(t, 1, m.NumIntVars())
	assert.Equal(t, "b", m.BoolVarName(b))
	assert.Equal(t, "x", m.IntVarName(x))
	assert.Equal(t, b, m.BoolVarAt(1))
	assert.Equal(t, x, m.IntVarAt(0))

	lo, hi := m.IntVarDomain(x)
	assert.Equal(t, int64(0), lo)
	assert.Equal(t, int64(5), hi)
}

func TestModel_ConstraintsAndSummary(t *testing.T) {
	m := NewModel("demo")
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	c := m.NewBoolVar("c")
	x := m.NewIntVar(0, 3, "x")

	m.AddExactlyOne(a, b)
	m.AddAtMostOne(b, c)
	m.AddEquality(Sum(a, b, c), 2)
	m.AddLessOrEqual(Sum(a, c), 1)
	m.AddGreaterOrEqual(Sum(b), 1)
	m.AddMultiplicationEquality(x, 3, a, c)

	assert.Equal(t, map[Kind]int{
		KindExactlyOne:             1,
		KindAtMostOne:              1,
		KindLinear:                 3,
		KindMultiplicationEquality: 1,
	}, m.Summary())

	le := m.Constraints()[3].(Linear)
	assert.Equal(t, MinBound, le.Lo)
	assert.Equal(t, int64(1), le.Hi)
	ge := m.Constraints()[4].(Linear)
	assert.Equal(t, int64(1), ge.Lo)
	assert.Equal(t, MaxBound, ge.Hi)

	require.NoError(t, m.Validate())
}

func TestModel_ConstraintCopiesInputs(t *testing.T) {
	m := NewModel("demo")
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")

	vars := []BoolVar{a, b}
	m.AddExactlyOne(vars...)
	vars[0] = b

	expr := Sum(a)
	m.AddEquality(expr, 1)
	expr.Add(b)

	assert.Equal(t, []BoolVar{a, b}, m.Constraints()[0].(ExactlyOne).Vars)
	assert.Equal(t, 1, m.Constraints()[1].(Linear).Expr.Len())
}

func TestModel_Objective(t *testing.T) {
	m := NewModel("demo")
	a := m.NewBoolVar("a")
	assert.False(t, m.HasObjective())
	assert.Nil(t, m.Objective())

	m.Maximize(Sum(a))
	require.True(t, m.HasObjective())
	assert.Equal(t, Maximize, m.Objective().Sense)
	assert.Equal(t, "maximize", m.Objective().Sense.String())

	m.Minimize(Sum(a))
	assert.Equal(t, "minimize", m.Objective().Sense.String())

	m.ClearObjective()
	assert.False(t, m.HasObjective())
}

func TestModel_Validate(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *Model)
		want  string
	}{
		{
			name:  "空取值范围",
			build: func(m *Model) { m.NewIntVar(3, 1, "bad") },
			want:  "empty domain",
		},
		{
			name:  "引用未知布尔变量",
			build: func(m *Model) { m.AddExactlyOne(m.BoolVarAt(9)) },
			want:  "unknown bool var #9",
		},
		{
			name:  "线性约束空区间",
			build: func(m *Model) { m.AddLinearConstraint(Sum(m.NewBoolVar("a")), 2, 1) },
			want:  "empty range",
		},
		{
			name:  "乘积约束引用未知整数变量",
			build: func(m *Model) { m.AddMultiplicationEquality(m.IntVarAt(0), 1, m.NewBoolVar("a")) },
			want:  "unknown int var #0",
		},
		{
			name: "目标引用未知整数变量",
			build: func(m *Model) {
				m.Maximize(NewLinearExpr().AddIntTerm(m.IntVarAt(4), 1))
			},
			want: "objective",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel("bad")
			tt.build(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLinearExpr(t *testing.T) {
	m := NewModel("expr")
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	x := m.NewIntVar(0, 10, "x")

	e := NewLinearExpr().AddTerm(a, 2).Add(b).AddIntTerm(x, 3).AddConstant(4)
	assert.Equal(t, 3, e.Len())
	assert.Equal(t, int64(4), e.Offset())
	assert.Equal(t, Term{Kind: TermInt, Index: 0, Coeff: 3}, e.Terms()[2])

	vals := fixedValues{bools: []bool{true, false}, ints: []int64{5}}
	assert.Equal(t, int64(2+15+4), e.Evaluate(vals))

	neg := e.Scale(-1)
	assert.Equal(t, int64(-21), neg.Evaluate(vals))
	assert.Equal(t, int64(21), e.Evaluate(vals), "Scale 不修改原表达式")

	clone := e.Clone()
	clone.AddConstant(1)
	assert.Equal(t, int64(4), e.Offset())
	assert.Nil(t, (*LinearExpr)(nil).Clone())
}
