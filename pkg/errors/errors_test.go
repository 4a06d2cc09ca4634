package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeModelInvalid, "模型无效")
	assert.Equal(t, "[MODEL_INVALID] 模型无效", err.Error())

	wrapped := Wrap(errors.New("boom"), CodeInternal, "内部错误")
	assert.Equal(t, "[INTERNAL_ERROR] 内部错误: boom", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "boom")
}

func TestIsAndGetCode(t *testing.T) {
	base := InfeasibleSpec(3)
	chained := fmt.Errorf("period failed: %w", base)

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"直接错误", base, CodeInfeasibleSpec},
		{"包装后的错误", chained, CodeInfeasibleSpec},
		{"普通错误", errors.New("plain"), CodeUnknown},
		{"空错误", nil, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.code != CodeUnknown, Is(tt.err, CodeInfeasibleSpec))
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  Code
		field string
		value interface{}
	}{
		{"输入无效", InvalidInput("budget", "必须为正"), CodeInvalidInput, "field", "budget"},
		{"维度无效", InvalidDimension("DayCount", "必须为正"), CodeInvalidDimension, "field", "DayCount"},
		{"偏好数据错误", MalformedPreferenceData(2, "重复"), CodeMalformedPreferenceData, "worker", 2},
		{"无可行解", InfeasibleSpec(4), CodeInfeasibleSpec, "period", 4},
		{"状态未知", UnknownStatus(1, "time_limit"), CodeUnknownStatus, "period", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.value, tt.err.Fields[tt.field])
		})
	}

	assert.Equal(t, "time_limit", UnknownStatus(1, "time_limit").Details)
	assert.Equal(t, CodeModelInvalid, ModelInvalid("x").Code)
}

func TestAppError_Builders(t *testing.T) {
	cause := errors.New("io")
	err := New(CodeInternal, "失败").WithDetails("细节").WithCause(cause).WithField("k", 1)

	assert.Equal(t, "细节", err.Details)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 1, err.Fields["k"])
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	assert.False(t, ve.HasErrors())
	assert.Equal(t, "验证失败", ve.Error())

	ve.Add("WorkerCount", "必须为正")
	ve.Add("DayCount", "必须为正")
	require.True(t, ve.HasErrors())
	assert.Equal(t, "验证失败: WorkerCount - 必须为正", ve.Error())

	appErr := ve.ToAppError(CodeInvalidDimension)
	assert.Equal(t, CodeInvalidDimension, appErr.Code)
	assert.Contains(t, appErr.Message, "WorkerCount")
	assert.NotContains(t, appErr.Message, "DayCount")
	assert.Len(t, appErr.Fields, 2)

	assert.Equal(t, "验证失败", (&ValidationErrors{}).ToAppError(CodeInvalidInput).Message)
}
