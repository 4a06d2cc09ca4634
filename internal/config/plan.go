package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint/builtin"
	"github.com/paiban/rostering/pkg/scheduler/horizon"
	"github.com/paiban/rostering/pkg/scheduler/objective"
	"github.com/paiban/rostering/pkg/scheduler/registry"
	"github.com/paiban/rostering/pkg/scheduler/scenario"
	"github.com/paiban/rostering/pkg/scheduler/solver"
)

// PlanFile 自定义排班方案文件
type PlanFile struct {
	Name    string `yaml:"name"`
	Periods int    `yaml:"periods" validate:"gte=0"`

	Period struct {
		Workers               int `yaml:"workers"`
		Shifts                int `yaml:"shifts"`
		Days                  int `yaml:"days"`
		ShiftsPerWorkerPerDay int `yaml:"shiftsPerWorkerPerDay"`
		Coverage              int `yaml:"coverage"`
		VacationDays          int `yaml:"vacationDays"`
		VacationSlots         int `yaml:"vacationSlots"`
		MinActivity           *struct {
			Minimum    int `yaml:"minimum"`
			WindowSize int `yaml:"windowSize"`
		} `yaml:"minActivity,omitempty"`
	} `yaml:"period"`

	Rules struct {
		StrictExclusivity bool `yaml:"strictExclusivity"`
		Fairness          bool `yaml:"fairness"`
		MinActivity       bool `yaml:"minActivity"`
		Vacation          bool `yaml:"vacation"`
		Affinity          bool `yaml:"affinity"`
	} `yaml:"rules"`

	Objective     string              `yaml:"objective" validate:"omitempty,oneof=none preference affinity rotation"`
	AffinitySense string              `yaml:"affinitySense" validate:"omitempty,oneof=rank_sum mutual_preference"`
	Rankings      model.Rankings      `yaml:"rankings,omitempty"`
	Requests      model.ShiftRequests `yaml:"requests,omitempty"`

	EnumerateAll bool          `yaml:"enumerateAll"`
	Budget       int           `yaml:"budget" validate:"gte=0"`
	TimeLimit    time.Duration `yaml:"timeLimit" validate:"gte=0"`
}

// LoadPlanFile 读取并校验方案文件
func LoadPlanFile(path string) (*PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "读取方案文件失败").WithField("path", path)
	}
	return ParsePlan(data)
}

// ParsePlan 解析方案内容
func ParsePlan(data []byte) (*PlanFile, error) {
	var f PlanFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析方案文件失败")
	}
	if err := validate.Struct(&f); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "方案文件校验失败")
	}
	return &f, nil
}

// Preset 把方案转换为可运行的场景，维度与偏好数据在这里校验
func (f *PlanFile) Preset() (scenario.Preset, error) {
	spec := model.PeriodSpec{
		WorkerCount:           f.Period.Workers,
		ShiftCount:            f.Period.Shifts,
		DayCount:              f.Period.Days,
		ShiftsPerWorkerPerDay: f.Period.ShiftsPerWorkerPerDay,
		CoveragePerShift:      f.Period.Coverage,
		VacationDaysPerWorker: f.Period.VacationDays,
		VacationSlots:         f.Period.VacationSlots,
	}
	if w := f.Period.MinActivity; w != nil {
		spec.MinActivity = &model.ActivityWindow{Minimum: w.Minimum, WindowSize: w.WindowSize}
	}
	period, err := model.NewPlanningPeriod(spec)
	if err != nil {
		return scenario.Preset{}, err
	}

	plan := horizon.PeriodPlan{
		Period: period,
		Rules: builtin.RuleSet{
			StrictExclusivity: f.Rules.StrictExclusivity,
			Fairness:          f.Rules.Fairness,
			MinActivity:       f.Rules.MinActivity,
			Vacation:          f.Rules.Vacation,
			Affinity:          f.Rules.Affinity,
		}.Rules(),
		Solve:  solver.Options{EnumerateAll: f.EnumerateAll, TimeLimit: f.TimeLimit},
		Budget: f.Budget,
	}

	if f.Rankings != nil {
		sense, err := ParseSense(f.AffinitySense)
		if err != nil {
			return scenario.Preset{}, err
		}
		plan.Registry = append(plan.Registry, registry.WithAffinity(f.Rankings, sense))
	}

	switch f.Objective {
	case "", "none":
		plan.Objective = objective.None()
	case "preference":
		if err := f.Requests.Validate(period); err != nil {
			return scenario.Preset{}, err
		}
		plan.Objective = objective.Preference(f.Requests)
	case "affinity":
		plan.Objective = objective.Affinity()
	case "rotation":
		plan.Objective = objective.Rotation()
	}

	name := f.Name
	if name == "" {
		name = "custom"
	}
	periods := f.Periods
	if periods == 0 {
		periods = 1
	}
	return scenario.Preset{
		Name:        name,
		Description: fmt.Sprintf("方案文件 %s", period),
		Periods:     periods,
		Plan:        plan,
		Requests:    f.Requests,
	}, nil
}
