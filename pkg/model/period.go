// Package model 定义排班建模的核心数据模型
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/paiban/rostering/pkg/errors"
)

var validate = validator.New()

// ActivityWindow 滑动窗口最小出勤要求
type ActivityWindow struct {
	Minimum    int `json:"minimum" validate:"gt=0"`
	WindowSize int `json:"window_size" validate:"gt=0"`
}

// PeriodSpec 排班周期参数（构造 PlanningPeriod 的输入）
type PeriodSpec struct {
	WorkerCount           int             `json:"worker_count" validate:"gt=0"`
	ShiftCount            int             `json:"shift_count" validate:"gt=0"`
	DayCount              int             `json:"day_count" validate:"gt=0"`
	ShiftsPerWorkerPerDay int             `json:"shifts_per_worker_per_day" validate:"gte=0"` // 0 表示默认值 1
	CoveragePerShift      int             `json:"coverage_per_shift" validate:"gt=0,ltefield=WorkerCount"`
	VacationDaysPerWorker int             `json:"vacation_days_per_worker,omitempty" validate:"gte=0"`
	VacationSlots         int             `json:"vacation_slots,omitempty" validate:"gte=0"` // 0 表示与配额相同
	MinActivity           *ActivityWindow `json:"min_activity,omitempty" validate:"omitempty"`
}

// PlanningPeriod 排班周期（构造后不可变）
type PlanningPeriod struct {
	spec PeriodSpec
}

// NewPlanningPeriod 校验参数并创建排班周期
func NewPlanningPeriod(spec PeriodSpec) (PlanningPeriod, error) {
	if spec.ShiftsPerWorkerPerDay == 0 {
		spec.ShiftsPerWorkerPerDay = 1
	}
	if spec.VacationSlots == 0 {
		spec.VacationSlots = spec.VacationDaysPerWorker
	}
	if spec.MinActivity != nil {
		w := *spec.MinActivity
		spec.MinActivity = &w
	}

	if err := validate.Struct(spec); err != nil {
		return PlanningPeriod{}, dimensionError(err)
	}

	if spec.VacationDaysPerWorker > spec.VacationSlots {
		return PlanningPeriod{}, apperrors.InvalidDimension("VacationSlots",
			fmt.Sprintf("假期槽位 %d 少于配额 %d", spec.VacationSlots, spec.VacationDaysPerWorker))
	}
	if spec.MinActivity != nil && spec.MinActivity.WindowSize > spec.DayCount {
		return PlanningPeriod{}, apperrors.InvalidDimension("MinActivity.WindowSize",
			fmt.Sprintf("窗口 %d 天超过周期 %d 天", spec.MinActivity.WindowSize, spec.DayCount))
	}

	return PlanningPeriod{spec: spec}, nil
}

// MustPlanningPeriod 创建排班周期，参数非法时 panic（用于预置场景）
func MustPlanningPeriod(spec PeriodSpec) PlanningPeriod {
	p, err := NewPlanningPeriod(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// dimensionError 将校验错误转换为 InvalidDimensionError
func dimensionError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(err, apperrors.CodeInvalidDimension, "排班周期参数无效")
	}

	ve := &apperrors.ValidationErrors{}
	for _, fe := range verrs {
		ve.Add(strings.TrimPrefix(fe.StructNamespace(), "PeriodSpec."), describeTag(fe))
	}
	return ve.ToAppError(apperrors.CodeInvalidDimension)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("必须大于 %s，实际 %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("不能小于 %s，实际 %v", fe.Param(), fe.Value())
	case "ltefield":
		return fmt.Sprintf("不能超过 %s，实际 %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("校验 '%s' 未通过", fe.Tag())
	}
}

// Spec 返回周期参数副本
func (p PlanningPeriod) Spec() PeriodSpec {
	s := p.spec
	if s.MinActivity != nil {
		w := *s.MinActivity
		s.MinActivity = &w
	}
	return s
}

// Workers 员工数
func (p PlanningPeriod) Workers() int { return p.spec.WorkerCount }

// Shifts 每日班次数
func (p PlanningPeriod) Shifts() int { return p.spec.ShiftCount }

// Days 天数
func (p PlanningPeriod) Days() int { return p.spec.DayCount }

// ShiftsPerWorkerPerDay 每人每日最多班次数
func (p PlanningPeriod) ShiftsPerWorkerPerDay() int { return p.spec.ShiftsPerWorkerPerDay }

// Coverage 每个班次需要的人数
func (p PlanningPeriod) Coverage() int { return p.spec.CoveragePerShift }

// VacationQuota 每人假期配额
func (p PlanningPeriod) VacationQuota() int { return p.spec.VacationDaysPerWorker }

// VacationSlots 每人假期槽位数
func (p PlanningPeriod) VacationSlots() int { return p.spec.VacationSlots }

// HasVacation 是否启用假期配额
func (p PlanningPeriod) HasVacation() bool { return p.spec.VacationSlots > 0 }

// Activity 返回滑动窗口要求
func (p PlanningPeriod) Activity() (ActivityWindow, bool) {
	if p.spec.MinActivity == nil {
		return ActivityWindow{}, false
	}
	return *p.spec.MinActivity, true
}

// TotalSlots 周期内需要填补的总岗位数
func (p PlanningPeriod) TotalSlots() int {
	return p.spec.ShiftCount * p.spec.DayCount * p.spec.CoveragePerShift
}

// FairnessBounds 每人总班次的上下限
// min = 总岗位 / 人数，不能整除时 max = min + 1
func (p PlanningPeriod) FairnessBounds() (min, max int) {
	total := p.TotalSlots()
	min = total / p.spec.WorkerCount
	max = min
	if total%p.spec.WorkerCount != 0 {
		max = min + 1
	}
	return min, max
}

// IsZero 是否为未初始化的周期
func (p PlanningPeriod) IsZero() bool { return p.spec.WorkerCount == 0 }

// String 返回周期摘要
func (p PlanningPeriod) String() string {
	return fmt.Sprintf("workers=%d shifts=%d days=%d coverage=%d",
		p.spec.WorkerCount, p.spec.ShiftCount, p.spec.DayCount, p.spec.CoveragePerShift)
}
