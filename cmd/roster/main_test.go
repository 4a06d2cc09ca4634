package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paiban/rostering/pkg/model"
)

func TestPrintRoster_RequestMarks(t *testing.T) {
	// 2 人 1 天 2 班：员工 0 上班次 0，员工 1 上班次 1
	r := model.NewRoster(2, 1, 2)
	r.Set(0, 0, 0, true)
	r.Set(1, 0, 1, true)

	tests := []struct {
		name     string
		requests model.ShiftRequests
		want     []string
		absent   []string
	}{
		{
			name:     "无请求数据",
			requests: nil,
			want:     []string{"员工 0 上班次 0\n", "员工 1 上班次 1\n"},
			absent:   []string{"已请求", "未请求"},
		},
		{
			name:     "标注是否请求",
			requests: model.ShiftRequests{{{1, 0}}, {{1, 0}}},
			want:     []string{"员工 0 上班次 0（已请求）", "员工 1 上班次 1（未请求）"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printRoster(&buf, r, tt.requests)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
