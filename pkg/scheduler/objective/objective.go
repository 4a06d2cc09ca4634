// Package objective 为排班模型设置目标函数
package objective

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
	"github.com/paiban/rostering/pkg/scheduler/registry"
)

// Mode 目标模式
type Mode int

const (
	// ModeNone 纯可行性/枚举，不设目标
	ModeNone Mode = iota
	// ModePreference 最大化满足的班次请求数
	ModePreference
	// ModeAffinity 最大化同班搭档的亲和度之和
	ModeAffinity
	// ModeRotation 最大化安排的班次总数
	ModeRotation
)

// String 返回模式名称
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePreference:
		return "preference"
	case ModeAffinity:
		return "affinity"
	case ModeRotation:
		return "rotation"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Composer 目标函数组合器，每个模型只设置一个目标
type Composer struct {
	mode     Mode
	requests model.ShiftRequests
	logger   *logger.SchedulerLogger
}

// None 不设目标
func None() Composer { return Composer{mode: ModeNone} }

// Preference 最大化满足的班次请求
func Preference(requests model.ShiftRequests) Composer {
	return Composer{mode: ModePreference, requests: requests}
}

// Affinity 最大化搭档亲和度，注册表需启用亲和度
func Affinity() Composer { return Composer{mode: ModeAffinity} }

// Rotation 最大化班次总数
func Rotation() Composer { return Composer{mode: ModeRotation} }

// WithLogger 返回使用指定日志器的副本
func (c Composer) WithLogger(l *logger.SchedulerLogger) Composer {
	c.logger = l
	return c
}

// Mode 返回目标模式
func (c Composer) Mode() Mode { return c.mode }

// Requests 返回班次请求（仅偏好模式）
func (c Composer) Requests() model.ShiftRequests { return c.requests }

func (c Composer) log() *logger.SchedulerLogger {
	if c.logger != nil {
		return c.logger
	}
	return logger.NewSchedulerLogger()
}

// Compose 在注册表的模型上设置目标函数，总是最大化
func (c Composer) Compose(reg *registry.Registry) error {
	m := reg.Model()

	switch c.mode {
	case ModeNone:
		m.ClearObjective()

	case ModePreference:
		if err := c.requests.Validate(reg.Period()); err != nil {
			return err
		}
		p := reg.Period()
		expr := cpmodel.NewLinearExpr()
		for w := 0; w < p.Workers(); w++ {
			for d := 0; d < p.Days(); d++ {
				for s := 0; s < p.Shifts(); s++ {
					if c.requests.Requested(w, d, s) {
						expr.Add(reg.Shift(w, d, s))
					}
				}
			}
		}
		m.Maximize(expr)

	case ModeAffinity:
		if !reg.HasAffinity() {
			return apperrors.ModelInvalid("亲和度目标需要启用亲和度的注册表")
		}
		if sense := reg.Affinity().Sense(); sense == model.AffinityRankSum {
			c.log().AffinitySenseWarning(sense.String())
		}
		expr := cpmodel.NewLinearExpr()
		reg.EachPair(func(a, b, d, s int) {
			expr.AddIntTerm(reg.Paired(a, b, d, s), 1)
		})
		m.Maximize(expr)

	case ModeRotation:
		m.Maximize(cpmodel.Sum(reg.AllShifts()...))

	default:
		return apperrors.InvalidInput("objective.Mode", c.mode.String())
	}
	return nil
}

// RequestSummary 偏好模式的请求满足情况
type RequestSummary struct {
	Requested int `json:"requested"`
	Fulfilled int `json:"fulfilled"`
	// Target 按公平下限计算的可满足上限参考值：人数 * 每人最少班次
	Target int `json:"target"`
}

// SummarizeRequests 统计排班表满足了多少班次请求
func SummarizeRequests(requests model.ShiftRequests, p model.PlanningPeriod, r *model.Roster) (RequestSummary, error) {
	if err := requests.Validate(p); err != nil {
		return RequestSummary{}, err
	}
	if r == nil || r.Workers != p.Workers() || r.Days != p.Days() || r.Shifts != p.Shifts() {
		return RequestSummary{}, apperrors.InvalidDimension("Roster", "排班表维度与周期不一致")
	}

	min, _ := p.FairnessBounds()
	summary := RequestSummary{
		Requested: requests.Total(),
		Target:    p.Workers() * min,
	}
	for w := 0; w < p.Workers(); w++ {
		for d := 0; d < p.Days(); d++ {
			for s := 0; s < p.Shifts(); s++ {
				if requests.Requested(w, d, s) && r.Works(w, d, s) {
					summary.Fulfilled++
				}
			}
		}
	}
	return summary, nil
}
