package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// SchedulerLogger 排班建模与求解专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 基于全局日志器创建
func NewSchedulerLogger() *SchedulerLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// NewSchedulerLoggerWith 基于指定日志器创建
func NewSchedulerLoggerWith(l zerolog.Logger) *SchedulerLogger {
	l = l.With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// Nop 返回丢弃所有输出的日志器（测试用）
func Nop() *SchedulerLogger {
	l := zerolog.Nop()
	return &SchedulerLogger{base: &l}
}

// Logger 返回底层 zerolog 日志器
func (l *SchedulerLogger) Logger() *zerolog.Logger {
	return l.base
}

// PeriodStart 记录周期开始建模
func (l *SchedulerLogger) PeriodStart(runID string, period int, summary string) {
	l.base.Info().
		Str("run_id", runID).
		Int("period", period).
		Str("dimensions", summary).
		Msg("开始构建周期模型")
}

// ModelBuilt 记录模型构建完成
func (l *SchedulerLogger) ModelBuilt(period, boolVars, intVars, constraints int, objective string) {
	l.base.Debug().
		Int("period", period).
		Int("bool_vars", boolVars).
		Int("int_vars", intVars).
		Int("constraints", constraints).
		Str("objective", objective).
		Msg("模型构建完成")
}

// BuildFailed 记录建模失败
func (l *SchedulerLogger) BuildFailed(period int, err error) {
	l.base.Error().
		Int("period", period).
		Err(err).
		Msg("周期建模失败")
}

// SolutionFound 记录找到的解
func (l *SchedulerLogger) SolutionFound(index int, objective int64) {
	l.base.Debug().
		Int("solution", index).
		Int64("objective", objective).
		Msg("找到解")
}

// SearchStopped 记录达到解数量上限后停止搜索
func (l *SchedulerLogger) SearchStopped(solutions, budget int) {
	l.base.Info().
		Int("solutions", solutions).
		Int("budget", budget).
		Msg("达到解数量上限，停止搜索")
}

// PeriodComplete 记录周期求解完成
func (l *SchedulerLogger) PeriodComplete(runID string, period int, status string, duration time.Duration, conflicts, branches int64, solutions int) {
	l.base.Info().
		Str("run_id", runID).
		Int("period", period).
		Str("status", status).
		Dur("wall_time", duration).
		Int64("conflicts", conflicts).
		Int64("branches", branches).
		Int("solutions", solutions).
		Msg("周期求解完成")
}

// ContinuityCarried 记录衔接状态传递
func (l *SchedulerLogger) ContinuityCarried(period, facts int) {
	l.base.Debug().
		Int("period", period).
		Int("facts", facts).
		Msg("传递跨周期衔接状态")
}

// ContinuityReset 记录衔接状态清空
func (l *SchedulerLogger) ContinuityReset(period int, reason string) {
	l.base.Warn().
		Int("period", period).
		Str("reason", reason).
		Msg("清空跨周期衔接状态")
}

// ConstraintViolation 记录约束违反
func (l *SchedulerLogger) ConstraintViolation(constraint, details string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("details", details).
		Msg("约束违反")
}

// AffinitySenseWarning 提示亲和度按原始排名和最大化
func (l *SchedulerLogger) AffinitySenseWarning(sense string) {
	l.base.Warn().
		Str("sense", sense).
		Msg("亲和度按排名和最大化，偏好度越低的搭档得分越高")
}
