package model

import (
	"fmt"

	apperrors "github.com/paiban/rostering/pkg/errors"
)

// AffinitySense 亲和度权重的方向
type AffinitySense int

const (
	// AffinityRankSum 直接使用双方排名之和作为权重（排名 0 为最偏好）。
	// 最大化该权重会偏向互相偏好度低的搭档。
	AffinityRankSum AffinitySense = iota
	// AffinityMutualPreference 使用 最大排名和 - 排名和 作为权重，互相偏好的搭档得分更高
	AffinityMutualPreference
)

// String 返回方向名称
func (s AffinitySense) String() string {
	switch s {
	case AffinityRankSum:
		return "rank_sum"
	case AffinityMutualPreference:
		return "mutual_preference"
	default:
		return fmt.Sprintf("affinity_sense(%d)", int(s))
	}
}

// Rankings 每位员工对其他员工的偏好排序（从最偏好到最不偏好）
type Rankings [][]int

// Validate 校验排序：每个列表必须恰好包含其他所有员工各一次
func (r Rankings) Validate(workerCount int) error {
	if len(r) != workerCount {
		return apperrors.New(apperrors.CodeMalformedPreferenceData,
			fmt.Sprintf("偏好列表数量 %d 与员工数 %d 不一致", len(r), workerCount))
	}

	for w, list := range r {
		seen := make([]bool, workerCount)
		for _, other := range list {
			if other < 0 || other >= workerCount {
				return apperrors.MalformedPreferenceData(w, fmt.Sprintf("引用了未知员工 %d", other))
			}
			if other == w {
				return apperrors.MalformedPreferenceData(w, "列表中包含自己")
			}
			if seen[other] {
				return apperrors.MalformedPreferenceData(w, fmt.Sprintf("员工 %d 重复出现", other))
			}
			seen[other] = true
		}
		for other := 0; other < workerCount; other++ {
			if other != w && !seen[other] {
				return apperrors.MalformedPreferenceData(w, fmt.Sprintf("遗漏了员工 %d", other))
			}
		}
	}
	return nil
}

// AffinityMatrix 员工两两之间的静态亲和度
type AffinityMatrix struct {
	workers    int
	sense      AffinitySense
	rankSum    []int
	maxRankSum int
}

// DeriveAffinity 从偏好排序计算亲和度
// 排名和 = a 列表中 b 的位置 + b 列表中 a 的位置，对两个方向取值相同
func DeriveAffinity(r Rankings, workerCount int, sense AffinitySense) (*AffinityMatrix, error) {
	if err := r.Validate(workerCount); err != nil {
		return nil, err
	}
	if sense != AffinityRankSum && sense != AffinityMutualPreference {
		return nil, apperrors.InvalidInput("AffinitySense", sense.String())
	}

	position := make([]int, workerCount*workerCount)
	for w, list := range r {
		for rank, other := range list {
			position[w*workerCount+other] = rank
		}
	}

	m := &AffinityMatrix{
		workers: workerCount,
		sense:   sense,
		rankSum: make([]int, workerCount*workerCount),
	}
	if workerCount > 2 {
		m.maxRankSum = 2 * (workerCount - 2)
	}
	for a := 0; a < workerCount; a++ {
		for b := 0; b < workerCount; b++ {
			if a == b {
				continue
			}
			m.rankSum[a*workerCount+b] = position[a*workerCount+b] + position[b*workerCount+a]
		}
	}
	return m, nil
}

// Workers 员工数
func (m *AffinityMatrix) Workers() int { return m.workers }

// Sense 权重方向
func (m *AffinityMatrix) Sense() AffinitySense { return m.sense }

// RankSum 返回原始排名和
func (m *AffinityMatrix) RankSum(a, b int) int {
	m.check(a, b)
	return m.rankSum[a*m.workers+b]
}

// Weight 返回目标函数中使用的权重
func (m *AffinityMatrix) Weight(a, b int) int {
	sum := m.RankSum(a, b)
	if m.sense == AffinityMutualPreference {
		return m.maxRankSum - sum
	}
	return sum
}

// MaxWeight 所有搭档中的最大权重，用作辅助变量的上界
func (m *AffinityMatrix) MaxWeight() int {
	max := 0
	for a := 0; a < m.workers; a++ {
		for b := 0; b < m.workers; b++ {
			if a != b && m.Weight(a, b) > max {
				max = m.Weight(a, b)
			}
		}
	}
	return max
}

func (m *AffinityMatrix) check(a, b int) {
	if a < 0 || a >= m.workers || b < 0 || b >= m.workers || a == b {
		panic(fmt.Sprintf("affinity pair (%d,%d) out of range for %d workers", a, b, m.workers))
	}
}

// ShiftRequests 班次请求：requests[worker][day][shift] 为 0 或 1
type ShiftRequests [][][]int

// Validate 校验请求矩阵的形状与取值
func (r ShiftRequests) Validate(p PlanningPeriod) error {
	if len(r) != p.Workers() {
		return apperrors.New(apperrors.CodeMalformedPreferenceData,
			fmt.Sprintf("请求矩阵员工数 %d 与周期 %d 不一致", len(r), p.Workers()))
	}
	for w, days := range r {
		if len(days) != p.Days() {
			return apperrors.MalformedPreferenceData(w, fmt.Sprintf("请求天数 %d，期望 %d", len(days), p.Days()))
		}
		for d, shifts := range days {
			if len(shifts) != p.Shifts() {
				return apperrors.MalformedPreferenceData(w, fmt.Sprintf("第 %d 天请求班次数 %d，期望 %d", d, len(shifts), p.Shifts()))
			}
			for s, v := range shifts {
				if v != 0 && v != 1 {
					return apperrors.MalformedPreferenceData(w, fmt.Sprintf("第 %d 天班次 %d 的请求值 %d 不是 0/1", d, s, v))
				}
			}
		}
	}
	return nil
}

// Requested 是否请求了该班次
func (r ShiftRequests) Requested(w, d, s int) bool {
	return r[w][d][s] == 1
}

// Total 请求总数
func (r ShiftRequests) Total() int {
	total := 0
	for _, days := range r {
		for _, shifts := range days {
			for _, v := range shifts {
				total += v
			}
		}
	}
	return total
}
