package service

import (
	"errors"
	"strings"

	"github.com/CherepinRO/my-organizer-db/internal/repository"
	"github.com/CherepinRO/my-organizer-db/internal/utils"
)

// TransientError 暂态存储错误
// 由并发争用或资源耗尽导致的事务中止,调用方可以重试
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient storage error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// classifyStorageError 将存储层错误映射到错误分类
// 钩子产生的验证/约束错误原样透传;绕过应用层校验后被数据库
// CHECK 约束拦截的写入也归类为约束违反
func classifyStorageError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, repository.ErrTaskNotFound) {
		return err
	}

	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}

	var constraintErr *utils.ConstraintViolation
	if errors.As(err, &constraintErr) {
		return constraintErr
	}

	if isConstraintError(err) {
		return &utils.ConstraintViolation{Code: "CHECK_FAILED", Message: err.Error()}
	}

	if isTransientError(err) {
		return &TransientError{Err: err}
	}

	return err
}

// isConstraintError 判断是否为数据库约束失败
func isConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"constraint failed",
		"constraint violation",
		"violates check constraint",
		"violates not-null constraint",
		"not null constraint",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isTransientError 判断是否为可重试的暂态错误
func isTransientError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"database is locked",
		"deadlock",
		"connection refused",
		"connection reset",
		"too many connections",
		"serialization failure",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
