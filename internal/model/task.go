package model

import (
	"strings"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/utils"
	"gorm.io/gorm"
)

// Priority 任务优先级,闭合枚举
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Valid 判断优先级是否在闭合集合内
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Priorities 返回所有合法的优先级值
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// TaskType 任务类型,闭合枚举
type TaskType string

const (
	TaskTypeWork TaskType = "WORK"
	TaskTypeHome TaskType = "HOME"
)

// Valid 判断任务类型是否在闭合集合内
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeWork, TaskTypeHome:
		return true
	}
	return false
}

// TaskTypes 返回所有合法的任务类型值
func TaskTypes() []TaskType {
	return []TaskType{TaskTypeWork, TaskTypeHome}
}

// Task 任务数据模型
type Task struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Date      time.Time  `gorm:"type:date;not null"` // 任务计划日期(无时间部分)
	TaskName  string     `gorm:"type:varchar(255);not null;check:chk_tasks_name,TRIM(task_name) <> ''"`
	Comment   *string    `gorm:"type:text"` // 可选备注
	Deadline  *time.Time `gorm:"check:chk_tasks_deadline,deadline IS NULL OR deadline > created_at"`
	Priority  Priority   `gorm:"type:varchar(16);not null;check:chk_tasks_priority,priority IN ('HIGH','MEDIUM','LOW')"`
	TaskType  TaskType   `gorm:"type:varchar(16);not null;check:chk_tasks_task_type,task_type IN ('WORK','HOME')"`
	CreatedAt time.Time  `gorm:"not null"` // 创建时间,写入后不可变
	UpdatedAt time.Time  `gorm:"not null"` // 最近修改时间,由更新钩子维护
}

// TableName 指定表名
func (Task) TableName() string {
	return "tasks"
}

// Validate 验证任务行级约束
// deadline 始终与行自身的 created_at 比较,而不是当前时间
func (t *Task) Validate() error {
	if strings.TrimSpace(t.TaskName) == "" {
		return utils.ErrEmptyTaskName
	}
	if len(t.TaskName) > utils.MaxTaskNameLength {
		return utils.ErrTaskNameTooLong
	}
	if !t.Priority.Valid() {
		return utils.ErrInvalidPriority
	}
	if !t.TaskType.Valid() {
		return utils.ErrInvalidTaskType
	}
	if t.Deadline != nil && !t.CreatedAt.IsZero() && !t.Deadline.After(t.CreatedAt) {
		return utils.ErrDeadlineNotAfterCreation
	}
	return nil
}

// BeforeCreate 创建钩子
// created_at 和 updated_at 由系统统一分配,调用方提供的值会被覆盖
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return t.Validate()
}

// BeforeUpdate 更新钩子
// 每次成功的修改都会刷新 updated_at,调用方无法伪造该字段
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx.Statement.SetColumn("UpdatedAt", time.Now())
	return nil
}
