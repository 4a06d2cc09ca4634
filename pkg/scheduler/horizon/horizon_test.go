package horizon

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint/builtin"
	"github.com/paiban/rostering/pkg/scheduler/objective"
	"github.com/paiban/rostering/pkg/scheduler/solver"
)

type memoryRecorder struct {
	mu       sync.Mutex
	outcomes []int
}

func (m *memoryRecorder) RecordPeriod(outcome *PeriodOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome.Index)
}

func engine() solver.Engine {
	return solver.NewSATEngine().WithLogger(logger.Nop())
}

func rotationPlan(spec model.PeriodSpec, rs builtin.RuleSet) PeriodPlan {
	return PeriodPlan{
		Period:    model.MustPlanningPeriod(spec),
		Rules:     rs.Rules(),
		Objective: objective.Rotation(),
	}
}

func TestController_CarriesContinuity(t *testing.T) {
	// 6 人 3 班每班 2 人，每人每天恰好一个班
	plan := rotationPlan(model.PeriodSpec{
		WorkerCount: 6, ShiftCount: 3, DayCount: 4, CoveragePerShift: 2,
	}, builtin.RuleSet{})

	rec := &memoryRecorder{}
	c := New(engine(), 3, Repeat(plan), WithLogger(logger.Nop()), WithRecorder(rec))
	result, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Periods, 3)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.SolvedCount())
	assert.Equal(t, []int{0, 1, 2}, rec.outcomes)

	for k := range result.Periods {
		outcome := result.Periods[k]
		require.NotNil(t, outcome.Roster, "周期 %d 应有解", k)
		assert.Equal(t, solver.StatusOptimal, outcome.Status)
		assert.NoError(t, outcome.Err)
		assert.Empty(t, outcome.Violations)
		assert.Equal(t, int64(24), outcome.Objective)
		assert.Equal(t, 100.0, outcome.Coverage.OverallCoverage)
		assert.Equal(t, 4.0, outcome.Workload.AvgShifts)
		assert.Equal(t, model.ContinuityFromRoster(outcome.Roster), outcome.Continuity)

		if k == 0 {
			continue
		}
		prev := result.Periods[k-1].Roster
		for w := 0; w < 6; w++ {
			last := prev.ShiftOn(w, prev.Days-1)
			require.NotEqual(t, model.NoShift, last)
			assert.False(t, outcome.Roster.Works(w, 0, last),
				"员工 %d 在周期 %d 第一天重复了上一周期最后的班次 %d", w, k, last)
		}
	}

	state, current := c.State()
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 2, current)
	assert.True(t, c.Continuity().Any())
}

func TestController_InfeasiblePeriodContinues(t *testing.T) {
	feasible := rotationPlan(model.PeriodSpec{
		WorkerCount: 3, ShiftCount: 3, DayCount: 2, CoveragePerShift: 1,
	}, builtin.RuleSet{StrictExclusivity: true})
	// 2 人无法覆盖 3 个各需 1 人的班次，且每人每天只能上 1 个班
	infeasible := rotationPlan(model.PeriodSpec{
		WorkerCount: 2, ShiftCount: 3, DayCount: 2, CoveragePerShift: 1,
	}, builtin.RuleSet{StrictExclusivity: true})

	planner := func(k int) (PeriodPlan, error) {
		if k == 1 {
			return infeasible, nil
		}
		return feasible, nil
	}

	result, err := New(engine(), 3, planner, WithLogger(logger.Nop())).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Periods, 3)

	assert.True(t, result.Periods[0].Solved())
	assert.True(t, result.Periods[0].Continuity.Any())

	bad := result.Periods[1]
	assert.Equal(t, solver.StatusInfeasible, bad.Status)
	assert.Nil(t, bad.Roster)
	assert.True(t, apperrors.Is(bad.Err, apperrors.CodeInfeasibleSpec))
	assert.False(t, bad.Continuity.Any(), "无解后衔接状态清空")
	require.Len(t, bad.Continuity, 2)
	for w := range bad.Continuity {
		assert.Equal(t, model.NoShift, bad.Continuity[w])
	}

	assert.True(t, result.Periods[2].Solved())
	assert.Equal(t, map[solver.Status]int{solver.StatusOptimal: 2, solver.StatusInfeasible: 1}, result.ByStatus())
}

func TestController_BuildFailureContinues(t *testing.T) {
	good := rotationPlan(model.PeriodSpec{
		WorkerCount: 3, ShiftCount: 2, DayCount: 2, CoveragePerShift: 1,
	}, builtin.RuleSet{})

	tests := []struct {
		name    string
		planner Planner
		code    apperrors.Code
	}{
		{
			name: "覆盖人数超过员工数",
			planner: func(k int) (PeriodPlan, error) {
				if k == 1 {
					_, err := model.NewPlanningPeriod(model.PeriodSpec{
						WorkerCount: 2, ShiftCount: 2, DayCount: 2, CoveragePerShift: 3,
					})
					return PeriodPlan{}, err
				}
				return good, nil
			},
			code: apperrors.CodeInvalidDimension,
		},
		{
			name: "未设置周期参数",
			planner: func(k int) (PeriodPlan, error) {
				if k == 1 {
					return PeriodPlan{Objective: objective.Rotation()}, nil
				}
				return good, nil
			},
			code: apperrors.CodeInvalidDimension,
		},
		{
			name: "亲和度目标缺少偏好数据",
			planner: func(k int) (PeriodPlan, error) {
				if k == 1 {
					plan := good
					plan.Objective = objective.Affinity()
					return plan, nil
				}
				return good, nil
			},
			code: apperrors.CodeModelInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(engine(), 3, tt.planner, WithLogger(logger.Nop())).Run(context.Background())
			require.NoError(t, err)
			require.Len(t, result.Periods, 3)

			bad := result.Periods[1]
			assert.Equal(t, solver.StatusModelInvalid, bad.Status)
			assert.True(t, apperrors.Is(bad.Err, tt.code), "实际错误: %v", bad.Err)
			assert.False(t, bad.Continuity.Any())
			assert.Len(t, bad.Continuity, 3, "清空后仍保留员工数")

			assert.True(t, result.Periods[0].Solved())
			assert.True(t, result.Periods[2].Solved())
		})
	}
}

func TestController_RunIDInLogs(t *testing.T) {
	plan := rotationPlan(model.PeriodSpec{
		WorkerCount: 3, ShiftCount: 2, DayCount: 2, CoveragePerShift: 1,
	}, builtin.RuleSet{})

	var buf bytes.Buffer
	l := logger.NewSchedulerLoggerWith(zerolog.New(&buf).Level(zerolog.InfoLevel))
	result, err := New(engine(), 2, Repeat(plan), WithLogger(l)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Periods, 2)

	// 每个周期的开始与完成日志使用同一个 run_id
	byPeriod := make(map[int][]string)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		id, ok := entry["run_id"].(string)
		if !ok {
			continue
		}
		period := int(entry["period"].(float64))
		byPeriod[period] = append(byPeriod[period], id)
	}

	for _, outcome := range result.Periods {
		ids := byPeriod[outcome.Index]
		require.Len(t, ids, 2, "周期 %d", outcome.Index)
		for _, id := range ids {
			assert.Equal(t, outcome.RunID, id)
		}
	}
	assert.NotEqual(t, result.Periods[0].RunID, result.Periods[1].RunID)
}

func TestController_Canceled(t *testing.T) {
	plan := rotationPlan(model.PeriodSpec{
		WorkerCount: 3, ShiftCount: 2, DayCount: 2, CoveragePerShift: 1,
	}, builtin.RuleSet{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &memoryRecorder{}
	result, err := New(engine(), 2, Repeat(plan), WithLogger(logger.Nop()), WithRecorder(rec)).Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Periods, 2)
	for _, outcome := range result.Periods {
		assert.Equal(t, solver.StatusUnknown, outcome.Status)
		assert.Equal(t, solver.StopCanceled, outcome.StopReason)
		assert.True(t, apperrors.Is(outcome.Err, apperrors.CodeUnknownStatus))
	}
	assert.Equal(t, []int{0, 1}, rec.outcomes)
}

func TestController_InvalidSetup(t *testing.T) {
	plan := rotationPlan(model.PeriodSpec{
		WorkerCount: 1, ShiftCount: 1, DayCount: 1, CoveragePerShift: 1,
	}, builtin.RuleSet{})

	tests := []struct {
		name string
		c    *Controller
	}{
		{"周期数为零", New(engine(), 0, Repeat(plan), WithLogger(logger.Nop()))},
		{"缺少引擎", New(nil, 1, Repeat(plan), WithLogger(logger.Nop()))},
		{"缺少建模方案", New(engine(), 1, nil, WithLogger(logger.Nop()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.c.Run(context.Background())
			assert.Error(t, err)
			assert.Nil(t, result)
			state, _ := tt.c.State()
			assert.Equal(t, StateIdle, state)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "building_period", StateBuilding.String())
	assert.Equal(t, "solving", StateSolving.String())
	assert.Equal(t, "extracting", StateExtracting.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())
}
