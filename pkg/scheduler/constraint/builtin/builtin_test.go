package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
	"github.com/paiban/rostering/pkg/scheduler/registry"
)

func newContext(t *testing.T, spec model.PeriodSpec, opts ...registry.Option) *constraint.Context {
	t.Helper()
	p, err := model.NewPlanningPeriod(spec)
	require.NoError(t, err)
	reg, err := registry.New(cpmodel.NewModel("test"), p, opts...)
	require.NoError(t, err)
	ctx := constraint.NewContext(reg, model.NewContinuity(p.Workers()))
	ctx.Logger = logger.Nop()
	return ctx
}

func kinds(ctx *constraint.Context) map[cpmodel.Kind]int {
	return ctx.Registry.Model().Summary()
}

func TestCoverageRule_Apply(t *testing.T) {
	tests := []struct {
		name     string
		coverage int
		want     map[cpmodel.Kind]int
	}{
		{
			name:     "单人覆盖使用 ExactlyOne",
			coverage: 1,
			want:     map[cpmodel.Kind]int{cpmodel.KindExactlyOne: 9},
		},
		{
			name:     "多人覆盖使用线性等式",
			coverage: 2,
			want:     map[cpmodel.Kind]int{cpmodel.KindLinear: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t, model.PeriodSpec{WorkerCount: 4, ShiftCount: 3, DayCount: 3, CoveragePerShift: tt.coverage})
			require.NoError(t, NewCoverageRule().Apply(ctx))
			assert.Equal(t, tt.want, kinds(ctx))

			for _, c := range ctx.Registry.Model().Constraints() {
				if lin, ok := c.(cpmodel.Linear); ok {
					assert.Equal(t, int64(tt.coverage), lin.Lo)
					assert.Equal(t, int64(tt.coverage), lin.Hi)
					assert.Equal(t, 4, lin.Expr.Len())
				}
			}
		})
	}
}

func TestCoverageRule_Evaluate(t *testing.T) {
	ctx := newContext(t, model.PeriodSpec{WorkerCount: 3, ShiftCount: 1, DayCount: 2, CoveragePerShift: 1})
	rule := NewCoverageRule()

	r := model.NewRoster(3, 2, 1)
	r.Set(0, 0, 0, true)
	r.Set(1, 1, 0, true)
	assert.Empty(t, rule.Evaluate(ctx, r))

	r.Set(2, 1, 0, true)
	violations := rule.Evaluate(ctx, r)
	require.Len(t, violations, 1)
	assert.Equal(t, 1, violations[0].Day)
	assert.Equal(t, "error", violations[0].Severity)

	assert.Len(t, rule.Evaluate(ctx, model.NewRoster(2, 2, 1)), 1, "维度不一致")
}

func TestExclusivityRule_Apply(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		perDay int
		want   cpmodel.Kind
		lo, hi int64
	}{
		{name: "上限为 1 使用 AtMostOne", perDay: 1, want: cpmodel.KindAtMostOne},
		{name: "严格且上限为 1 使用 ExactlyOne", strict: true, perDay: 1, want: cpmodel.KindExactlyOne},
		{name: "上限为 2 使用线性不等式", perDay: 2, want: cpmodel.KindLinear, lo: cpmodel.MinBound, hi: 2},
		{name: "严格且上限为 2 使用线性等式", strict: true, perDay: 2, want: cpmodel.KindLinear, lo: 2, hi: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t, model.PeriodSpec{
				WorkerCount: 3, ShiftCount: 3, DayCount: 2, CoveragePerShift: 1, ShiftsPerWorkerPerDay: tt.perDay,
			})
			rule := NewExclusivityRule(tt.strict)
			require.NoError(t, rule.Apply(ctx))
			assert.Equal(t, map[cpmodel.Kind]int{tt.want: 6}, kinds(ctx))
			assert.Equal(t, tt.strict, rule.Strict())

			if tt.want == cpmodel.KindLinear {
				lin := ctx.Registry.Model().Constraints()[0].(cpmodel.Linear)
				assert.Equal(t, tt.lo, lin.Lo)
				assert.Equal(t, tt.hi, lin.Hi)
			}
		})
	}
}

func TestExclusivityRule_Evaluate(t *testing.T) {
	ctx := newContext(t, model.PeriodSpec{WorkerCount: 2, ShiftCount: 2, DayCount: 1, CoveragePerShift: 1})

	r := model.NewRoster(2, 1, 2)
	r.Set(0, 0, 0, true)
	r.Set(0, 0, 1, true)

	assert.Len(t, NewExclusivityRule(false).Evaluate(ctx, r), 1, "员工 0 上了两个班次")
	// 严格模式下员工 1 未上班也是违反
	assert.Len(t, NewExclusivityRule(true).Evaluate(ctx, r), 2)
}

func TestFairnessRule(t *testing.T) {
	ctx := newContext(t, model.PeriodSpec{WorkerCount: 4, ShiftCount: 3, DayCount: 3, CoveragePerShift: 1})
	rule := NewFairnessRule()
	require.NoError(t, rule.Apply(ctx))

	constraints := ctx.Registry.Model().Constraints()
	require.Len(t, constraints, 4)
	for _, c := range constraints {
		lin := c.(cpmodel.Linear)
		assert.Equal(t, int64(2), lin.Lo)
		assert.Equal(t, int64(3), lin.Hi)
		assert.Equal(t, 9, lin.Expr.Len())
	}

	r := model.NewRoster(4, 3, 3)
	r.Set(0, 0, 0, true)
	violations := rule.Evaluate(ctx, r)
	assert.Len(t, violations, 4, "所有人都不足 2 个班次")
}

func TestMinActivityRule(t *testing.T) {
	t.Run("每个窗口起点一条约束", func(t *testing.T) {
		ctx := newContext(t, model.PeriodSpec{
			WorkerCount: 6, ShiftCount: 3, DayCount: 30, CoveragePerShift: 2,
			MinActivity: &model.ActivityWindow{Minimum: 2, WindowSize: 3},
		})
		require.NoError(t, NewMinActivityRule().Apply(ctx))

		constraints := ctx.Registry.Model().Constraints()
		require.Len(t, constraints, 6*28)
		lin := constraints[0].(cpmodel.Linear)
		assert.Equal(t, int64(2), lin.Lo)
		assert.Equal(t, cpmodel.MaxBound, lin.Hi)
		assert.Equal(t, 9, lin.Expr.Len())
	})

	t.Run("周期未设置窗口时不生效", func(t *testing.T) {
		ctx := newContext(t, model.PeriodSpec{WorkerCount: 2, ShiftCount: 1, DayCount: 3, CoveragePerShift: 1})
		require.NoError(t, NewMinActivityRule().Apply(ctx))
		assert.Empty(t, ctx.Registry.Model().Constraints())
	})

	t.Run("审核重叠窗口", func(t *testing.T) {
		ctx := newContext(t, model.PeriodSpec{
			WorkerCount: 1, ShiftCount: 1, DayCount: 4, CoveragePerShift: 1,
			MinActivity: &model.ActivityWindow{Minimum: 2, WindowSize: 3},
		})
		r := model.NewRoster(1, 4, 1)
		r.Set(0, 0, 0, true)
		r.Set(0, 2, 0, true)
		// 窗口 [0,2] 有 2 个，窗口 [1,3] 只有 1 个
		violations := NewMinActivityRule().Evaluate(ctx, r)
		require.Len(t, violations, 1)
		assert.Equal(t, 1, violations[0].Day)
	})
}

func TestVacationRule(t *testing.T) {
	ctx := newContext(t, model.PeriodSpec{
		WorkerCount: 2, ShiftCount: 1, DayCount: 2, CoveragePerShift: 1, VacationDaysPerWorker: 3,
	})
	rule := NewVacationRule()
	require.NoError(t, rule.Apply(ctx))

	constraints := ctx.Registry.Model().Constraints()
	require.Len(t, constraints, 2)
	lin := constraints[0].(cpmodel.Linear)
	assert.Equal(t, int64(3), lin.Lo)
	assert.Equal(t, int64(3), lin.Hi)

	r := model.NewRoster(2, 2, 1)
	r.SetVacations([][]bool{{true, true, true}, {true, false, true}})
	violations := rule.Evaluate(ctx, r)
	require.Len(t, violations, 1)
	assert.Equal(t, 1, violations[0].Worker)

	t.Run("没有配额时不生效", func(t *testing.T) {
		ctx := newContext(t, model.PeriodSpec{WorkerCount: 2, ShiftCount: 1, DayCount: 2, CoveragePerShift: 1})
		require.NoError(t, NewVacationRule().Apply(ctx))
		assert.Empty(t, ctx.Registry.Model().Constraints())
	})
}

func TestContinuityRule(t *testing.T) {
	spec := model.PeriodSpec{WorkerCount: 3, ShiftCount: 3, DayCount: 2, CoveragePerShift: 1}

	t.Run("没有衔接事实时不添加约束", func(t *testing.T) {
		ctx := newContext(t, spec)
		require.NoError(t, NewContinuityRule().Apply(ctx))
		assert.Empty(t, ctx.Registry.Model().Constraints())
	})

	t.Run("每个事实一条约束", func(t *testing.T) {
		ctx := newContext(t, spec)
		ctx.Continuity = model.Continuity{2, model.NoShift, 0}
		require.NoError(t, NewContinuityRule().Apply(ctx))

		constraints := ctx.Registry.Model().Constraints()
		require.Len(t, constraints, 2)
		lin := constraints[0].(cpmodel.Linear)
		assert.Equal(t, int64(0), lin.Hi)
		assert.Equal(t, ctx.Registry.Shift(0, 0, 2).Index(), lin.Expr.Terms()[0].Index)

		r := model.NewRoster(3, 2, 3)
		r.Set(0, 0, 2, true)
		assert.Len(t, NewContinuityRule().Evaluate(ctx, r), 1)
	})

	t.Run("班次越界", func(t *testing.T) {
		ctx := newContext(t, spec)
		ctx.Continuity = model.Continuity{5, model.NoShift, model.NoShift}
		err := NewContinuityRule().Apply(ctx)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidDimension))
	})
}

func TestAffinityRule(t *testing.T) {
	rankings := model.Rankings{{1, 2}, {0, 2}, {0, 1}}
	spec := model.PeriodSpec{WorkerCount: 3, ShiftCount: 1, DayCount: 1, CoveragePerShift: 2}

	t.Run("每个有序搭档一条乘积等式", func(t *testing.T) {
		ctx := newContext(t, spec, registry.WithAffinity(rankings, model.AffinityRankSum))
		require.NoError(t, NewAffinityRule().Apply(ctx))

		constraints := ctx.Registry.Model().Constraints()
		require.Len(t, constraints, 6)
		mul := constraints[0].(cpmodel.MultiplicationEquality)
		assert.Equal(t, int64(ctx.Registry.Affinity().Weight(0, 1)), mul.Coeff)
		assert.Len(t, mul.Factors, 2)
	})

	t.Run("未启用亲和度", func(t *testing.T) {
		ctx := newContext(t, spec)
		err := NewAffinityRule().Apply(ctx)
		assert.True(t, apperrors.Is(err, apperrors.CodeModelInvalid))
	})

	t.Run("审核搭档记录", func(t *testing.T) {
		ctx := newContext(t, spec, registry.WithAffinity(rankings, model.AffinityRankSum))
		r := model.NewRoster(3, 1, 1)
		r.Set(0, 0, 0, true)
		r.Set(1, 0, 0, true)
		want := int64(ctx.Registry.Affinity().Weight(0, 1))
		r.Pairings = []model.Pairing{
			{WorkerA: 0, WorkerB: 1, Value: want},
			{WorkerA: 0, WorkerB: 2, Value: 1},
		}
		violations := NewAffinityRule().Evaluate(ctx, r)
		require.Len(t, violations, 1)
		assert.Equal(t, "warning", violations[0].Severity)
	})
}

func TestRuleSet(t *testing.T) {
	manager := RuleSet{Fairness: true, Vacation: true}.NewManager()
	assert.Equal(t, 4, manager.Count())
	assert.True(t, manager.Has(constraint.TypeCoverage))
	assert.True(t, manager.Has(constraint.TypeShiftExclusivity))
	assert.False(t, manager.Has(constraint.TypeAffinityLinearization))

	RegisterContinuity(manager)
	assert.True(t, manager.Has(constraint.TypeContinuityForbid))
}
