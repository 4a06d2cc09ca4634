package model

import "fmt"

// NoShift 表示当天未上班
const NoShift = -1

// Pairing 同一班次上两位员工的亲和度贡献
type Pairing struct {
	WorkerA int   `json:"worker_a"`
	WorkerB int   `json:"worker_b"`
	Day     int   `json:"day"`
	Shift   int   `json:"shift"`
	Value   int64 `json:"value"`
}

// Roster 一个解对应的排班表
type Roster struct {
	Workers int `json:"workers"`
	Days    int `json:"days"`
	Shifts  int `json:"shifts"`

	// Index 解的序号（从 1 开始）
	Index     int   `json:"index"`
	Objective int64 `json:"objective"`

	assigned  []bool
	vacations [][]bool
	Pairings  []Pairing `json:"pairings,omitempty"`
}

// NewRoster 创建空排班表
func NewRoster(workers, days, shifts int) *Roster {
	return &Roster{
		Workers:  workers,
		Days:     days,
		Shifts:   shifts,
		assigned: make([]bool, workers*days*shifts),
	}
}

func (r *Roster) offset(w, d, s int) int {
	if w < 0 || w >= r.Workers || d < 0 || d >= r.Days || s < 0 || s >= r.Shifts {
		panic(fmt.Sprintf("roster key (%d,%d,%d) out of range", w, d, s))
	}
	return (w*r.Days+d)*r.Shifts + s
}

// Set 设置员工某天某班次是否上班
func (r *Roster) Set(w, d, s int, working bool) {
	r.assigned[r.offset(w, d, s)] = working
}

// Works 员工某天是否上该班次
func (r *Roster) Works(w, d, s int) bool {
	return r.assigned[r.offset(w, d, s)]
}

// ShiftsOn 员工某天上的所有班次
func (r *Roster) ShiftsOn(w, d int) []int {
	var result []int
	for s := 0; s < r.Shifts; s++ {
		if r.Works(w, d, s) {
			result = append(result, s)
		}
	}
	return result
}

// ShiftOn 员工某天上的班次，多个班次时取序号最大的，未上班返回 NoShift
func (r *Roster) ShiftOn(w, d int) int {
	shift := NoShift
	for s := 0; s < r.Shifts; s++ {
		if r.Works(w, d, s) {
			shift = s
		}
	}
	return shift
}

// WorkerTotal 员工整个周期的班次数
func (r *Roster) WorkerTotal(w int) int {
	total := 0
	for d := 0; d < r.Days; d++ {
		for s := 0; s < r.Shifts; s++ {
			if r.Works(w, d, s) {
				total++
			}
		}
	}
	return total
}

// DayTotal 员工某天的班次数
func (r *Roster) DayTotal(w, d int) int {
	return len(r.ShiftsOn(w, d))
}

// WindowTotal 员工从 start 开始 size 天内的班次数
func (r *Roster) WindowTotal(w, start, size int) int {
	total := 0
	for d := start; d < start+size; d++ {
		total += r.DayTotal(w, d)
	}
	return total
}

// Coverage 某天某班次上班人数
func (r *Roster) Coverage(d, s int) int {
	count := 0
	for w := 0; w < r.Workers; w++ {
		if r.Works(w, d, s) {
			count++
		}
	}
	return count
}

// SetVacations 设置假期变量取值
func (r *Roster) SetVacations(v [][]bool) {
	r.vacations = v
}

// HasVacations 是否包含假期信息
func (r *Roster) HasVacations() bool {
	return r.vacations != nil
}

// VacationCount 员工的假期天数
func (r *Roster) VacationCount(w int) int {
	if r.vacations == nil {
		return 0
	}
	count := 0
	for _, v := range r.vacations[w] {
		if v {
			count++
		}
	}
	return count
}

// Vacation 员工某个假期槽位是否启用
func (r *Roster) Vacation(w, slot int) bool {
	if r.vacations == nil {
		return false
	}
	return r.vacations[w][slot]
}

// Affinity 返回某个搭档的亲和度贡献
func (r *Roster) Affinity(a, b, d, s int) (int64, bool) {
	for _, p := range r.Pairings {
		if p.WorkerA == a && p.WorkerB == b && p.Day == d && p.Shift == s {
			return p.Value, true
		}
	}
	return 0, false
}
