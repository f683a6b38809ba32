package utils

import (
	"strings"
)

// MaxTaskNameLength 任务名称最大长度
const MaxTaskNameLength = 255

// ValidateTaskName 验证任务名称
func ValidateTaskName(name string) error {
	// 1. 检查是否为空或仅包含空白字符
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyTaskName
	}

	// 2. 检查长度（最大 255 字符）
	if len(name) > MaxTaskNameLength {
		return ErrTaskNameTooLong
	}

	return nil
}

// 验证错误定义（必填字段缺失）
var (
	ErrMissingDate     = &ValidationError{Code: "MISSING_DATE", Message: "date is required"}
	ErrMissingPriority = &ValidationError{Code: "MISSING_PRIORITY", Message: "priority is required"}
	ErrMissingTaskType = &ValidationError{Code: "MISSING_TASK_TYPE", Message: "task type is required"}
	ErrNilRequest      = &ValidationError{Code: "NIL_REQUEST", Message: "request cannot be nil"}
)

// 约束违反错误定义（域规则被违反）
var (
	ErrEmptyTaskName            = &ConstraintViolation{Code: "EMPTY_TASK_NAME", Message: "task name cannot be empty or whitespace"}
	ErrTaskNameTooLong          = &ConstraintViolation{Code: "TASK_NAME_TOO_LONG", Message: "task name exceeds maximum length"}
	ErrInvalidPriority          = &ConstraintViolation{Code: "INVALID_PRIORITY", Message: "priority must be one of HIGH, MEDIUM, LOW"}
	ErrInvalidTaskType          = &ConstraintViolation{Code: "INVALID_TASK_TYPE", Message: "task type must be one of WORK, HOME"}
	ErrDeadlineNotAfterCreation = &ConstraintViolation{Code: "DEADLINE_NOT_AFTER_CREATION", Message: "deadline must be strictly after creation time"}
)

// ValidationError 验证错误
// 表示必填字段缺失或格式错误,调用方需要修正请求
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConstraintViolation 约束违反错误
// 表示字段值违反了存储层强制执行的域规则
type ConstraintViolation struct {
	Code    string
	Message string
}

func (e *ConstraintViolation) Error() string {
	return e.Message
}
