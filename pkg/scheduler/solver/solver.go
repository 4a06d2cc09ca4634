// Package solver 定义求解引擎契约并提供基于 gophersat 的实现
package solver

import (
	"context"
	"time"

	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// Status 求解状态
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

// String 返回状态名称
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// HasSolution 该状态下是否得到了解
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Options 求解选项
type Options struct {
	// EnumerateAll 枚举模式：无目标时每个不同的解回调一次，有目标时每个改进解回调一次
	EnumerateAll bool `json:"enumerate_all"`
	// TimeLimit 求解时间上限，0 表示不限制；只在两次 SAT 调用之间检查
	TimeLimit time.Duration `json:"time_limit"`
}

// Solution 求解过程中得到的一个解
type Solution interface {
	cpmodel.Values

	// Index 解的序号，从 1 开始
	Index() int

	// ObjectiveValue 目标值，无目标时为 0
	ObjectiveValue() int64
}

// SolutionFunc 解回调，返回 true 表示停止搜索
type SolutionFunc func(sol Solution) (stop bool)

// Statistics 求解统计
type Statistics struct {
	Conflicts  int64         `json:"conflicts"`
	Branches   int64         `json:"branches"`
	WallTime   time.Duration `json:"wall_time"`
	Solutions  int           `json:"solutions"`
	Iterations int           `json:"iterations"`
}

// StopReason 搜索结束原因
type StopReason string

const (
	StopExhausted StopReason = "exhausted"  // 搜索空间耗尽或最优性得证
	StopCallback  StopReason = "callback"   // 回调要求停止
	StopCanceled  StopReason = "canceled"   // 上下文取消
	StopTimeLimit StopReason = "time_limit" // 超过时间上限
	StopSolver    StopReason = "solver"     // 底层求解器未给出结论
)

// Response 求解结果
type Response struct {
	Status     Status         `json:"status"`
	Objective  int64          `json:"objective"`
	Values     cpmodel.Values `json:"-"`
	Statistics Statistics     `json:"statistics"`
	StopReason StopReason     `json:"stop_reason"`
}

// Engine 求解引擎
type Engine interface {
	// Name 返回引擎名称
	Name() string

	// Solve 阻塞求解模型，按选项回调解
	Solve(ctx context.Context, m *cpmodel.Model, opts Options, cb SolutionFunc) (*Response, error)
}
