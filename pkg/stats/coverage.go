package stats

import (
	"github.com/paiban/rostering/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	Required        int     `json:"required"`         // 需要填补的总岗位数
	Assigned        int     `json:"assigned"`         // 实际安排的岗位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)，超配不计入

	DailyCoverage []DayCoverage `json:"daily_coverage"`
	// ShiftCoverage 按班次序号统计的覆盖率 (%)
	ShiftCoverage []float64 `json:"shift_coverage"`

	Understaffed []SlotGap `json:"understaffed"`
	Overstaffed  []SlotGap `json:"overstaffed"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day          int     `json:"day"`
	Required     int     `json:"required"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
	StaffCount   int     `json:"staff_count"` // 当天上班的人数
}

// SlotGap 某个 (天, 班次) 的人数偏差
type SlotGap struct {
	Day      int `json:"day"`
	Shift    int `json:"shift"`
	Required int `json:"required"`
	Assigned int `json:"assigned"`
}

// AnalyzeCoverage 按每个班次需要 required 人分析覆盖率
func AnalyzeCoverage(r *model.Roster, required int) *CoverageMetrics {
	metrics := &CoverageMetrics{OverallCoverage: 100}
	if r == nil || r.Days == 0 || r.Shifts == 0 || required <= 0 {
		return metrics
	}

	metrics.DailyCoverage = make([]DayCoverage, r.Days)
	metrics.ShiftCoverage = make([]float64, r.Shifts)
	shiftFilled := make([]int, r.Shifts)
	filled := 0

	for d := 0; d < r.Days; d++ {
		day := DayCoverage{Day: d, Required: required * r.Shifts}
		dayFilled := 0
		for s := 0; s < r.Shifts; s++ {
			got := r.Coverage(d, s)
			day.Assigned += got
			useful := got
			if useful > required {
				useful = required
			}
			filled += useful
			dayFilled += useful
			shiftFilled[s] += useful

			switch {
			case got < required:
				metrics.Understaffed = append(metrics.Understaffed, SlotGap{Day: d, Shift: s, Required: required, Assigned: got})
			case got > required:
				metrics.Overstaffed = append(metrics.Overstaffed, SlotGap{Day: d, Shift: s, Required: required, Assigned: got})
			}
		}
		for w := 0; w < r.Workers; w++ {
			if r.DayTotal(w, d) > 0 {
				day.StaffCount++
			}
		}
		day.CoverageRate = rate(dayFilled, day.Required)
		metrics.DailyCoverage[d] = day
		metrics.Assigned += day.Assigned
	}

	metrics.Required = required * r.Shifts * r.Days
	metrics.OverallCoverage = rate(filled, metrics.Required)
	for s := range shiftFilled {
		metrics.ShiftCoverage[s] = rate(shiftFilled[s], required*r.Days)
	}
	return metrics
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 100
	}
	return float64(part) / float64(whole) * 100
}
