// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeCanceled     Code = "CANCELED"

	// 建模相关
	CodeInvalidDimension        Code = "INVALID_DIMENSION"
	CodeMalformedPreferenceData Code = "MALFORMED_PREFERENCE_DATA"
	CodeModelInvalid            Code = "MODEL_INVALID"

	// 求解相关
	CodeInfeasibleSpec Code = "INFEASIBLE_SPEC"
	CodeUnknownStatus  Code = "UNKNOWN_STATUS"
)

// AppError 应用错误
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason)).
		WithField("field", field)
}

// InvalidDimension 创建维度无效错误（排班周期参数非法）
func InvalidDimension(field, reason string) *AppError {
	return New(CodeInvalidDimension, fmt.Sprintf("维度 '%s' 无效: %s", field, reason)).
		WithField("field", field)
}

// MalformedPreferenceData 创建偏好数据格式错误
func MalformedPreferenceData(worker int, reason string) *AppError {
	return New(CodeMalformedPreferenceData, fmt.Sprintf("员工 %d 的偏好数据无效: %s", worker, reason)).
		WithField("worker", worker)
}

// ModelInvalid 创建模型无效错误
func ModelInvalid(reason string) *AppError {
	return New(CodeModelInvalid, reason)
}

// InfeasibleSpec 创建无可行解错误，记录周期序号
func InfeasibleSpec(period int) *AppError {
	return New(CodeInfeasibleSpec, fmt.Sprintf("周期 %d 无可行解", period)).
		WithField("period", period)
}

// UnknownStatus 创建求解状态未知错误（例如超时）
func UnknownStatus(period int, reason string) *AppError {
	return New(CodeUnknownStatus, fmt.Sprintf("周期 %d 求解状态未知", period)).
		WithDetails(reason).
		WithField("period", period)
}

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为指定错误码的 AppError，首个字段作为消息
func (ve *ValidationErrors) ToAppError(code Code) *AppError {
	msg := "验证失败"
	if len(ve.Errors) > 0 {
		msg = fmt.Sprintf("字段 '%s' 无效: %s", ve.Errors[0].Field, ve.Errors[0].Message)
	}
	err := New(code, msg)
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
