package objective

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
	"github.com/paiban/rostering/pkg/scheduler/registry"
)

func newRegistry(t *testing.T, spec model.PeriodSpec, opts ...registry.Option) *registry.Registry {
	t.Helper()
	p, err := model.NewPlanningPeriod(spec)
	require.NoError(t, err)
	reg, err := registry.New(cpmodel.NewModel("objective"), p, opts...)
	require.NoError(t, err)
	return reg
}

var smallSpec = model.PeriodSpec{WorkerCount: 2, ShiftCount: 2, DayCount: 1, CoveragePerShift: 1}

func TestCompose_None(t *testing.T) {
	reg := newRegistry(t, smallSpec)
	reg.Model().Maximize(cpmodel.Sum(reg.AllShifts()...))

	require.NoError(t, None().Compose(reg))
	assert.False(t, reg.Model().HasObjective())
}

func TestCompose_Preference(t *testing.T) {
	reg := newRegistry(t, smallSpec)
	requests := model.ShiftRequests{
		{{1, 0}},
		{{0, 1}},
	}

	require.NoError(t, Preference(requests).Compose(reg))
	obj := reg.Model().Objective()
	require.NotNil(t, obj)
	assert.Equal(t, cpmodel.Maximize, obj.Sense)
	require.Equal(t, 2, obj.Expr.Len())
	assert.Equal(t, reg.Shift(0, 0, 0).Index(), obj.Expr.Terms()[0].Index)
	assert.Equal(t, reg.Shift(1, 0, 1).Index(), obj.Expr.Terms()[1].Index)
}

func TestCompose_PreferenceMalformed(t *testing.T) {
	tests := []struct {
		name     string
		requests model.ShiftRequests
	}{
		{name: "员工数不一致", requests: model.ShiftRequests{{{1, 0}}}},
		{name: "天数不一致", requests: model.ShiftRequests{{{1, 0}, {0, 0}}, {{0, 1}}}},
		{name: "班次数不一致", requests: model.ShiftRequests{{{1}}, {{0, 1}}}},
		{name: "取值不是 0/1", requests: model.ShiftRequests{{{2, 0}}, {{0, 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(t, smallSpec)
			err := Preference(tt.requests).Compose(reg)
			assert.True(t, apperrors.Is(err, apperrors.CodeMalformedPreferenceData), "got %v", err)
			assert.False(t, reg.Model().HasObjective())
		})
	}
}

func TestCompose_Affinity(t *testing.T) {
	spec := model.PeriodSpec{WorkerCount: 3, ShiftCount: 1, DayCount: 2, CoveragePerShift: 2}
	rankings := model.Rankings{{1, 2}, {0, 2}, {0, 1}}

	reg := newRegistry(t, spec, registry.WithAffinity(rankings, model.AffinityMutualPreference))
	require.NoError(t, Affinity().WithLogger(logger.Nop()).Compose(reg))

	obj := reg.Model().Objective()
	require.NotNil(t, obj)
	// 3*2 个有序搭档 × 2 天
	assert.Equal(t, 12, obj.Expr.Len())
	for _, term := range obj.Expr.Terms() {
		assert.Equal(t, cpmodel.TermInt, term.Kind)
	}

	t.Run("未启用亲和度", func(t *testing.T) {
		err := Affinity().WithLogger(logger.Nop()).Compose(newRegistry(t, spec))
		assert.True(t, apperrors.Is(err, apperrors.CodeModelInvalid))
	})
}

func TestCompose_Rotation(t *testing.T) {
	reg := newRegistry(t, smallSpec)
	require.NoError(t, Rotation().Compose(reg))
	assert.Equal(t, 4, reg.Model().Objective().Expr.Len())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "none", ModeNone.String())
	assert.Equal(t, "preference", ModePreference.String())
	assert.Equal(t, "affinity", ModeAffinity.String())
	assert.Equal(t, "rotation", ModeRotation.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}

func TestSummarizeRequests(t *testing.T) {
	p := model.MustPlanningPeriod(smallSpec)
	requests := model.ShiftRequests{
		{{1, 1}},
		{{0, 1}},
	}
	r := model.NewRoster(2, 1, 2)
	r.Set(0, 0, 0, true)
	r.Set(1, 0, 0, true)

	summary, err := SummarizeRequests(requests, p, r)
	require.NoError(t, err)
	assert.Equal(t, RequestSummary{Requested: 3, Fulfilled: 1, Target: 2}, summary)

	_, err = SummarizeRequests(requests, p, model.NewRoster(3, 1, 2))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidDimension))
}
