package builtin

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/constraint"
	"github.com/paiban/rostering/pkg/scheduler/cpmodel"
)

// MinActivityRule 滑动窗口最小出勤：任意连续 window 天内至少上 minimum 个班次
// 窗口参数取自周期，周期未设置时规则不生效
type MinActivityRule struct {
	*BaseRule
}

// NewMinActivityRule 创建滑动窗口规则
func NewMinActivityRule() *MinActivityRule {
	return &MinActivityRule{
		BaseRule: NewBaseRule("滑动窗口最小出勤", constraint.TypeMinActivityWindow, constraint.CategoryHard),
	}
}

func (c *MinActivityRule) window(p model.PlanningPeriod) (model.ActivityWindow, bool, error) {
	win, ok := p.Activity()
	if !ok {
		return win, false, nil
	}
	if win.WindowSize <= 0 || win.WindowSize > p.Days() {
		return win, false, apperrors.InvalidDimension("MinActivity.WindowSize",
			fmt.Sprintf("窗口 %d 天不在 [1, %d] 内", win.WindowSize, p.Days()))
	}
	return win, true, nil
}

// Apply 为每位员工的每个窗口起点添加下限，窗口相互重叠
func (c *MinActivityRule) Apply(ctx *constraint.Context) error {
	p := ctx.Period()
	win, ok, err := c.window(p)
	if err != nil || !ok {
		return err
	}

	m := ctx.Registry.Model()
	for w := 0; w < p.Workers(); w++ {
		for start := 0; start+win.WindowSize <= p.Days(); start++ {
			vars := ctx.Registry.Window(w, start, win.WindowSize)
			m.AddGreaterOrEqual(cpmodel.Sum(vars...), int64(win.Minimum))
		}
	}
	return nil
}

// Evaluate 检查所有窗口
func (c *MinActivityRule) Evaluate(ctx *constraint.Context, r *model.Roster) []constraint.ViolationDetail {
	p := ctx.Period()
	win, ok, err := c.window(p)
	if err != nil {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, err.Error())}
	}
	if !ok {
		return nil
	}
	if !sameShape(p, r) {
		return []constraint.ViolationDetail{c.CreateViolation(-1, -1, -1, "排班表维度与周期不一致")}
	}

	var violations []constraint.ViolationDetail
	for w := 0; w < p.Workers(); w++ {
		for start := 0; start+win.WindowSize <= p.Days(); start++ {
			if got := r.WindowTotal(w, start, win.WindowSize); got < win.Minimum {
				violations = append(violations, c.CreateViolation(w, start, -1,
					fmt.Sprintf("员工 %d 从第 %d 天起 %d 天内只有 %d 个班次，至少 %d",
						w, start, win.WindowSize, got, win.Minimum)))
			}
		}
	}
	return violations
}
