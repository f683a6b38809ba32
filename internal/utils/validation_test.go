package utils_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/CherepinRO/my-organizer-db/internal/utils"
	"github.com/stretchr/testify/assert"
)

// TestValidateTaskName_Valid 测试合法的任务名称
func TestValidateTaskName_Valid(t *testing.T) {
	assert.NoError(t, utils.ValidateTaskName("Grocery shopping"))
	assert.NoError(t, utils.ValidateTaskName("a"))
	assert.NoError(t, utils.ValidateTaskName(strings.Repeat("x", 255)))
}

// TestValidateTaskName_Empty 测试空名称被拒绝
func TestValidateTaskName_Empty(t *testing.T) {
	err := utils.ValidateTaskName("")
	assert.ErrorIs(t, err, utils.ErrEmptyTaskName)
}

// TestValidateTaskName_Whitespace 测试仅空白字符的名称被拒绝
func TestValidateTaskName_Whitespace(t *testing.T) {
	err := utils.ValidateTaskName("   ")
	assert.ErrorIs(t, err, utils.ErrEmptyTaskName)

	err = utils.ValidateTaskName("\t\n ")
	assert.ErrorIs(t, err, utils.ErrEmptyTaskName)
}

// TestValidateTaskName_TooLong 测试超长名称被拒绝
func TestValidateTaskName_TooLong(t *testing.T) {
	err := utils.ValidateTaskName(strings.Repeat("x", 256))
	assert.ErrorIs(t, err, utils.ErrTaskNameTooLong)
}

// TestErrorTypes 测试错误分类的类型区分
func TestErrorTypes(t *testing.T) {
	var validationErr *utils.ValidationError
	assert.ErrorAs(t, utils.ErrMissingDate, &validationErr)
	assert.Equal(t, "MISSING_DATE", validationErr.Code)

	var constraintErr *utils.ConstraintViolation
	assert.ErrorAs(t, utils.ErrEmptyTaskName, &constraintErr)
	assert.Equal(t, "EMPTY_TASK_NAME", constraintErr.Code)

	// 两个分类互不混淆
	var other *utils.ConstraintViolation
	assert.False(t, errors.As(utils.ErrMissingDate, &other))
}
