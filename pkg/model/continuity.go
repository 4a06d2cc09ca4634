package model

// Continuity 跨周期衔接状态：每位员工在上一周期最后一天上的班次，NoShift 表示无
type Continuity []int

// NewContinuity 创建全部为空的衔接状态
func NewContinuity(workers int) Continuity {
	c := make(Continuity, workers)
	c.Reset()
	return c
}

// ContinuityFromRoster 从排班表最后一天提取衔接状态
func ContinuityFromRoster(r *Roster) Continuity {
	c := NewContinuity(r.Workers)
	if r.Days == 0 {
		return c
	}
	last := r.Days - 1
	for w := 0; w < r.Workers; w++ {
		c[w] = r.ShiftOn(w, last)
	}
	return c
}

// Shift 返回员工的衔接班次
func (c Continuity) Shift(w int) (int, bool) {
	if w < 0 || w >= len(c) || c[w] == NoShift {
		return NoShift, false
	}
	return c[w], true
}

// Any 是否存在任何衔接事实
func (c Continuity) Any() bool {
	for _, s := range c {
		if s != NoShift {
			return true
		}
	}
	return false
}

// Reset 清空所有衔接事实
func (c Continuity) Reset() {
	for i := range c {
		c[i] = NoShift
	}
}

// Resize 返回适配新员工数的副本，多出的员工没有衔接事实
func (c Continuity) Resize(workers int) Continuity {
	out := NewContinuity(workers)
	copy(out, c)
	return out
}

// Clone 返回副本
func (c Continuity) Clone() Continuity {
	out := make(Continuity, len(c))
	copy(out, c)
	return out
}
