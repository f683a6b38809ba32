package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/model"
	"gorm.io/gorm"
)

// ErrTaskNotFound 操作引用了不存在的任务 ID
var ErrTaskNotFound = errors.New("task not found")

// SortField 排序字段
type SortField string

const (
	SortByDeadline  SortField = "deadline"
	SortByPriority  SortField = "priority"
	SortByDate      SortField = "date"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// TaskRepository 任务仓储接口
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id int64) (*model.Task, error)
	FindAll(ctx context.Context) ([]*model.Task, error)
	FindByFilter(ctx context.Context, filter *TaskFilter) ([]*model.Task, error)
	Update(ctx context.Context, id int64, update *TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id int64) error
	CountByPriority(ctx context.Context) (map[model.Priority]int64, error)
	CountByType(ctx context.Context) (map[model.TaskType]int64, error)
}

// TaskFilter 任务查询过滤器
type TaskFilter struct {
	Date           *time.Time
	Priority       *model.Priority
	TaskType       *model.TaskType
	NameContains   *string
	HasDeadline    *bool
	DeadlineBefore *time.Time
	DeadlineAfter  *time.Time
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	SortBy         SortField
	Descending     bool
	Limit          int
	Offset         int
}

// TaskUpdate 部分更新的字段集合,nil 字段保持原值
type TaskUpdate struct {
	Date     *time.Time
	TaskName *string
	Comment  *string
	Deadline *time.Time
	Priority *model.Priority
	TaskType *model.TaskType
}

// taskRepository 任务仓储实现
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create 创建任务
// id、created_at、updated_at 由存储层分配,行级约束在创建钩子和 CHECK 约束中强制
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID 根据 ID 查找任务
func (r *taskRepository) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindAll 查找所有任务
func (r *taskRepository) FindAll(ctx context.Context) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// FindByFilter 根据过滤器查找任务
// 索引只影响查询代价,不影响查询结果
func (r *taskRepository) FindByFilter(ctx context.Context, filter *TaskFilter) ([]*model.Task, error) {
	var tasks []*model.Task
	query := r.db.WithContext(ctx).Model(&model.Task{})

	if filter != nil {
		if filter.Date != nil {
			query = query.Where("date = ?", *filter.Date)
		}
		if filter.Priority != nil {
			query = query.Where("priority = ?", *filter.Priority)
		}
		if filter.TaskType != nil {
			query = query.Where("task_type = ?", *filter.TaskType)
		}
		if filter.NameContains != nil {
			query = query.Where("task_name LIKE ?", "%"+*filter.NameContains+"%")
		}
		if filter.HasDeadline != nil {
			if *filter.HasDeadline {
				query = query.Where("deadline IS NOT NULL")
			} else {
				query = query.Where("deadline IS NULL")
			}
		}
		if filter.DeadlineBefore != nil {
			query = query.Where("deadline < ?", *filter.DeadlineBefore)
		}
		if filter.DeadlineAfter != nil {
			query = query.Where("deadline > ?", *filter.DeadlineAfter)
		}
		if filter.CreatedAfter != nil {
			query = query.Where("created_at >= ?", *filter.CreatedAfter)
		}
		if filter.CreatedBefore != nil {
			query = query.Where("created_at <= ?", *filter.CreatedBefore)
		}

		query = query.Order(orderClause(filter))

		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	} else {
		query = query.Order("created_at DESC")
	}

	err := query.Find(&tasks).Error
	return tasks, err
}

// orderClause 构建排序子句
func orderClause(filter *TaskFilter) string {
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	switch filter.SortBy {
	case SortByPriority:
		// HIGH → MEDIUM → LOW,按语义而非字典序排序
		return "CASE priority WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END " + direction
	case SortByDeadline:
		// 无 deadline 的行排在末尾
		return "deadline IS NULL, deadline " + direction
	case SortByDate:
		return "date " + direction
	case SortByUpdatedAt:
		return "updated_at " + direction
	case SortByCreatedAt:
		return "created_at " + direction
	default:
		return "created_at DESC"
	}
}

// Update 部分更新任务
// 在单个事务内加载行、套用变更并写回:未包含的字段保持原值,
// deadline 约束始终针对行的原始 created_at 重新校验
func (r *taskRepository) Update(ctx context.Context, id int64, update *TaskUpdate) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if update != nil {
			if update.Date != nil {
				task.Date = *update.Date
			}
			if update.TaskName != nil {
				task.TaskName = *update.TaskName
			}
			if update.Comment != nil {
				task.Comment = update.Comment
			}
			if update.Deadline != nil {
				task.Deadline = update.Deadline
			}
			if update.Priority != nil {
				task.Priority = *update.Priority
			}
			if update.TaskType != nil {
				task.TaskType = *update.TaskType
			}
		}

		// 即使字段集未发生变化,更新钩子也会刷新 updated_at
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete 根据 ID 删除任务
// 删除不存在的行返回 ErrTaskNotFound,调用方可将其视为无操作
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CountByPriority 按优先级统计任务数
func (r *taskRepository) CountByPriority(ctx context.Context) (map[model.Priority]int64, error) {
	var rows []struct {
		Priority model.Priority
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("priority, COUNT(*) as count").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Priority]int64, len(rows))
	for _, row := range rows {
		counts[row.Priority] = row.Count
	}
	return counts, nil
}

// CountByType 按任务类型统计任务数
func (r *taskRepository) CountByType(ctx context.Context) (map[model.TaskType]int64, error) {
	var rows []struct {
		TaskType model.TaskType
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("task_type, COUNT(*) as count").
		Group("task_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.TaskType]int64, len(rows))
	for _, row := range rows {
		counts[row.TaskType] = row.Count
	}
	return counts, nil
}
