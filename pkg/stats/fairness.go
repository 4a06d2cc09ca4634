// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paiban/rostering/pkg/model"
)

// WorkloadMetrics 工作量公平性指标
type WorkloadMetrics struct {
	Gini        float64 `json:"gini"`          // 班次数基尼系数 (0=完全公平, 1=完全不公平)
	Variance    float64 `json:"variance"`      // 班次数方差
	StdDev      float64 `json:"std_dev"`       // 班次数标准差
	AvgShifts   float64 `json:"avg_shifts"`    // 人均班次
	MaxShifts   int     `json:"max_shifts"`    // 最多班次
	MinShifts   int     `json:"min_shifts"`    // 最少班次
	ShiftsRange int     `json:"shifts_range"`  // 极差

	// ShiftTypeGini 每个班次序号单独计算的基尼系数
	ShiftTypeGini []float64 `json:"shift_type_gini"`

	WorkerStats []WorkerStat `json:"worker_stats"`

	// OverallScore 综合公平性评分 (0-100)
	OverallScore float64 `json:"overall_score"`
}

// WorkerStat 员工统计
type WorkerStat struct {
	Worker       int     `json:"worker"`
	TotalShifts  int     `json:"total_shifts"`
	ShiftCounts  []int   `json:"shift_counts"` // 按班次序号统计
	DaysWorked   int     `json:"days_worked"`
	VacationDays int     `json:"vacation_days"`
	Deviation    float64 `json:"deviation"` // 与平均值的偏差百分比
}

// AnalyzeWorkload 分析排班表的工作量公平性
func AnalyzeWorkload(r *model.Roster) *WorkloadMetrics {
	if r == nil || r.Workers == 0 {
		return &WorkloadMetrics{OverallScore: 100}
	}

	workerStats := make([]WorkerStat, r.Workers)
	totals := make([]float64, r.Workers)
	byShift := make([][]float64, r.Shifts)
	for s := range byShift {
		byShift[s] = make([]float64, r.Workers)
	}

	for w := 0; w < r.Workers; w++ {
		stat := WorkerStat{
			Worker:       w,
			ShiftCounts:  make([]int, r.Shifts),
			VacationDays: r.VacationCount(w),
		}
		for d := 0; d < r.Days; d++ {
			shifts := r.ShiftsOn(w, d)
			if len(shifts) > 0 {
				stat.DaysWorked++
			}
			for _, s := range shifts {
				stat.ShiftCounts[s]++
				stat.TotalShifts++
				byShift[s][w]++
			}
		}
		workerStats[w] = stat
		totals[w] = float64(stat.TotalShifts)
	}

	avg := mean(totals)
	variance := varianceOf(totals, avg)
	stdDev := math.Sqrt(variance)
	max, min := valueRange(totals)

	for i := range workerStats {
		if avg > 0 {
			workerStats[i].Deviation = (float64(workerStats[i].TotalShifts) - avg) / avg * 100
		}
	}

	shiftGini := make([]float64, r.Shifts)
	for s := range byShift {
		shiftGini[s] = gini(byShift[s])
	}

	g := gini(totals)
	return &WorkloadMetrics{
		Gini:          g,
		Variance:      variance,
		StdDev:        stdDev,
		AvgShifts:     avg,
		MaxShifts:     int(max),
		MinShifts:     int(min),
		ShiftsRange:   int(max - min),
		ShiftTypeGini: shiftGini,
		WorkerStats:   workerStats,
		OverallScore:  overallScore(g, shiftGini, stdDev, avg),
	}
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// valueRange 计算极值
func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}

	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

// overallScore 综合公平性评分
func overallScore(workloadGini float64, shiftGini []float64, stdDev, avg float64) float64 {
	const (
		workloadWeight = 0.5
		shiftWeight    = 0.3
		stdDevWeight   = 0.2
	)

	workloadScore := (1 - workloadGini) * 100

	shiftScore := 100.0
	if len(shiftGini) > 0 {
		shiftScore = (1 - mean(shiftGini)) * 100
	}

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cvScore = math.Max(0, 100-stdDev/avg*200)
	}

	score := workloadWeight*workloadScore + shiftWeight*shiftScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// CompareRosters 比较两个排班表的公平性
func CompareRosters(a, b *model.Roster) map[string]float64 {
	m1 := AnalyzeWorkload(a)
	m2 := AnalyzeWorkload(b)

	return map[string]float64{
		"gini_diff":             m2.Gini - m1.Gini,
		"overall_score_diff":    m2.OverallScore - m1.OverallScore,
		"roster1_overall_score": m1.OverallScore,
		"roster2_overall_score": m2.OverallScore,
	}
}
