package service

import (
	"context"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/logging"
	"github.com/CherepinRO/my-organizer-db/internal/metrics"
	"github.com/CherepinRO/my-organizer-db/internal/model"
	"github.com/CherepinRO/my-organizer-db/internal/repository"
	"github.com/CherepinRO/my-organizer-db/internal/utils"
	"github.com/sirupsen/logrus"
)

// TaskService 任务服务接口
// 对外部调用方暴露任务存储的完整数据访问契约
type TaskService interface {
	Create(ctx context.Context, req *CreateTaskRequest) (*model.Task, error)
	Get(ctx context.Context, id int64) (*model.Task, error)
	Update(ctx context.Context, id int64, req *UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*model.Task, error)
	Search(ctx context.Context, filter *repository.TaskFilter) ([]*model.Task, error)
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Date     time.Time      `json:"date"`               // 任务计划日期,必填
	TaskName string         `json:"task_name"`          // 任务名称,必填
	Comment  *string        `json:"comment,omitempty"`  // 可选备注
	Deadline *time.Time     `json:"deadline,omitempty"` // 可选截止时间,必须晚于创建时间
	Priority model.Priority `json:"priority"`           // 优先级,必填
	TaskType model.TaskType `json:"task_type"`          // 任务类型,必填
}

// UpdateTaskRequest 部分更新任务请求
// 为 nil 的字段保持原值;updated_at 由存储层刷新,不接受调用方的值
type UpdateTaskRequest struct {
	Date     *time.Time      `json:"date,omitempty"`
	TaskName *string         `json:"task_name,omitempty"`
	Comment  *string         `json:"comment,omitempty"`
	Deadline *time.Time      `json:"deadline,omitempty"`
	Priority *model.Priority `json:"priority,omitempty"`
	TaskType *model.TaskType `json:"task_type,omitempty"`
}

// taskService 任务服务实现
type taskService struct {
	repo   repository.TaskRepository
	logger *logrus.Logger
}

// NewTaskService 创建任务服务
func NewTaskService(repo repository.TaskRepository, logger *logrus.Logger) TaskService {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &taskService{
		repo:   repo,
		logger: logger,
	}
}

// Create 创建任务
// 任何不变量违反都会拒绝整个写入,不产生副作用
func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest) (*model.Task, error) {
	start := time.Now()

	// 1. 请求校验
	if req == nil {
		return nil, utils.ErrNilRequest
	}
	if req.Date.IsZero() {
		return nil, utils.ErrMissingDate
	}
	if err := s.validateName(req.TaskName); err != nil {
		return nil, err
	}
	if err := s.validatePriority(req.Priority); err != nil {
		return nil, err
	}
	if err := s.validateTaskType(req.TaskType); err != nil {
		return nil, err
	}

	// 2. 构造任务,时间戳和 ID 由存储层分配
	task := &model.Task{
		Date:     req.Date,
		TaskName: req.TaskName,
		Comment:  req.Comment,
		Deadline: req.Deadline,
		Priority: req.Priority,
		TaskType: req.TaskType,
	}

	// 3. 写入,deadline 与 created_at 的关系在创建钩子中校验
	if err := s.repo.Create(ctx, task); err != nil {
		classified := classifyStorageError(err)
		s.recordRejection(classified)
		s.logger.WithError(classified).Warn("task create rejected")
		return nil, classified
	}

	metrics.RecordTaskCreated()
	metrics.ObserveStorageOperation("create", time.Since(start).Seconds())
	s.logger.WithFields(logrus.Fields{
		"task_id":  task.ID,
		"priority": task.Priority,
		"type":     task.TaskType,
	}).Debug("task created")

	return task, nil
}

// Get 根据 ID 获取任务
func (s *taskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	start := time.Now()
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	metrics.ObserveStorageOperation("get", time.Since(start).Seconds())
	return task, nil
}

// Update 部分更新任务
// 未包含的字段保持原值;即使字段集未变化,updated_at 也会前移
func (s *taskService) Update(ctx context.Context, id int64, req *UpdateTaskRequest) (*model.Task, error) {
	start := time.Now()

	if req == nil {
		return nil, utils.ErrNilRequest
	}

	// 1. 校验被修改的字段
	if req.TaskName != nil {
		if err := s.validateName(*req.TaskName); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			s.recordRejection(utils.ErrInvalidPriority)
			return nil, utils.ErrInvalidPriority
		}
	}
	if req.TaskType != nil {
		if !req.TaskType.Valid() {
			s.recordRejection(utils.ErrInvalidTaskType)
			return nil, utils.ErrInvalidTaskType
		}
	}

	// 2. 写入,deadline 始终针对行的原始 created_at 重新校验
	update := &repository.TaskUpdate{
		Date:     req.Date,
		TaskName: req.TaskName,
		Comment:  req.Comment,
		Deadline: req.Deadline,
		Priority: req.Priority,
		TaskType: req.TaskType,
	}
	task, err := s.repo.Update(ctx, id, update)
	if err != nil {
		classified := classifyStorageError(err)
		s.recordRejection(classified)
		s.logger.WithError(classified).WithField("task_id", id).Warn("task update rejected")
		return nil, classified
	}

	metrics.RecordTaskUpdated()
	metrics.ObserveStorageOperation("update", time.Since(start).Seconds())
	s.logger.WithField("task_id", id).Debug("task updated")

	return task, nil
}

// Delete 根据 ID 删除任务
// 删除不存在的行上报 ErrTaskNotFound,不视为致命错误
func (s *taskService) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	if err := s.repo.Delete(ctx, id); err != nil {
		return classifyStorageError(err)
	}

	metrics.RecordTaskDeleted()
	metrics.ObserveStorageOperation("delete", time.Since(start).Seconds())
	s.logger.WithField("task_id", id).Debug("task deleted")

	return nil
}

// List 列出所有任务
func (s *taskService) List(ctx context.Context) ([]*model.Task, error) {
	start := time.Now()
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	metrics.ObserveStorageOperation("list", time.Since(start).Seconds())
	return tasks, nil
}

// Search 按过滤器查询任务
func (s *taskService) Search(ctx context.Context, filter *repository.TaskFilter) ([]*model.Task, error) {
	start := time.Now()
	tasks, err := s.repo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	metrics.ObserveStorageOperation("search", time.Since(start).Seconds())
	return tasks, nil
}

// validateName 校验任务名称
func (s *taskService) validateName(name string) error {
	if err := utils.ValidateTaskName(name); err != nil {
		s.recordRejection(err)
		return err
	}
	return nil
}

// validatePriority 校验优先级必填且合法
func (s *taskService) validatePriority(p model.Priority) error {
	if p == "" {
		return utils.ErrMissingPriority
	}
	if !p.Valid() {
		s.recordRejection(utils.ErrInvalidPriority)
		return utils.ErrInvalidPriority
	}
	return nil
}

// validateTaskType 校验任务类型必填且合法
func (s *taskService) validateTaskType(t model.TaskType) error {
	if t == "" {
		return utils.ErrMissingTaskType
	}
	if !t.Valid() {
		s.recordRejection(utils.ErrInvalidTaskType)
		return utils.ErrInvalidTaskType
	}
	return nil
}

// recordRejection 将约束违反记入指标
func (s *taskService) recordRejection(err error) {
	if violation, ok := err.(*utils.ConstraintViolation); ok {
		metrics.RecordConstraintViolation(violation.Code)
	}
}
