package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/rostering/pkg/errors"
)

func TestRankings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		rankings Rankings
		wantErr  bool
	}{
		{"合法", Rankings{{1, 2}, {2, 0}, {0, 1}}, false},
		{"列表数量不符", Rankings{{1, 2}, {2, 0}}, true},
		{"引用未知员工", Rankings{{1, 3}, {2, 0}, {0, 1}}, true},
		{"包含自己", Rankings{{0, 1}, {2, 0}, {0, 1}}, true},
		{"重复出现", Rankings{{1, 1}, {2, 0}, {0, 1}}, true},
		{"遗漏员工", Rankings{{1}, {2, 0}, {0, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rankings.Validate(3)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.Is(err, apperrors.CodeMalformedPreferenceData))
		})
	}
}

func TestDeriveAffinity(t *testing.T) {
	// 0 与 1 互相最偏好，0 与 2 互相最不偏好
	rankings := Rankings{{1, 2}, {0, 2}, {1, 0}}

	tests := []struct {
		name   string
		sense  AffinitySense
		weight map[[2]int]int
		max    int
	}{
		{
			name:   "排名和",
			sense:  AffinityRankSum,
			weight: map[[2]int]int{{0, 1}: 0, {0, 2}: 2, {1, 2}: 1},
			max:    2,
		},
		{
			name:   "互相偏好",
			sense:  AffinityMutualPreference,
			weight: map[[2]int]int{{0, 1}: 2, {0, 2}: 0, {1, 2}: 1},
			max:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DeriveAffinity(rankings, 3, tt.sense)
			require.NoError(t, err)
			assert.Equal(t, 3, m.Workers())
			assert.Equal(t, tt.sense, m.Sense())
			assert.Equal(t, tt.max, m.MaxWeight())

			for pair, w := range tt.weight {
				a, b := pair[0], pair[1]
				assert.Equal(t, w, m.Weight(a, b))
				assert.Equal(t, m.Weight(a, b), m.Weight(b, a), "两种顺序取值相同")
				assert.Equal(t, m.RankSum(a, b), m.RankSum(b, a))
			}
		})
	}
}

func TestDeriveAffinity_Errors(t *testing.T) {
	_, err := DeriveAffinity(Rankings{{1}, {2}}, 2, AffinityRankSum)
	assert.True(t, apperrors.Is(err, apperrors.CodeMalformedPreferenceData))

	_, err = DeriveAffinity(Rankings{{1}, {0}}, 2, AffinitySense(7))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))

	m, err := DeriveAffinity(Rankings{{1}, {0}}, 2, AffinityRankSum)
	require.NoError(t, err)
	assert.Panics(t, func() { m.Weight(0, 0) })
	assert.Panics(t, func() { m.RankSum(0, 2) })
}

func TestAffinitySense_String(t *testing.T) {
	assert.Equal(t, "rank_sum", AffinityRankSum.String())
	assert.Equal(t, "mutual_preference", AffinityMutualPreference.String())
	assert.Equal(t, "affinity_sense(5)", AffinitySense(5).String())
}

func TestShiftRequests(t *testing.T) {
	p := MustPlanningPeriod(PeriodSpec{WorkerCount: 2, ShiftCount: 2, DayCount: 1, CoveragePerShift: 1})

	tests := []struct {
		name     string
		requests ShiftRequests
		wantErr  bool
	}{
		{"合法", ShiftRequests{{{1, 0}}, {{0, 1}}}, false},
		{"员工数不符", ShiftRequests{{{1, 0}}}, true},
		{"天数不符", ShiftRequests{{{1, 0}, {0, 0}}, {{0, 1}}}, true},
		{"班次数不符", ShiftRequests{{{1}}, {{0, 1}}}, true},
		{"取值不是 0/1", ShiftRequests{{{2, 0}}, {{0, 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.requests.Validate(p)
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.CodeMalformedPreferenceData))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.requests.Requested(0, 0, 0))
			assert.False(t, tt.requests.Requested(0, 0, 1))
			assert.Equal(t, 2, tt.requests.Total())
		})
	}
}
