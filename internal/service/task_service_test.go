package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/database"
	"github.com/CherepinRO/my-organizer-db/internal/logging"
	"github.com/CherepinRO/my-organizer-db/internal/model"
	"github.com/CherepinRO/my-organizer-db/internal/repository"
	"github.com/CherepinRO/my-organizer-db/internal/service"
	"github.com/CherepinRO/my-organizer-db/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestService 创建任务服务测试环境
func setupTestService(t *testing.T) service.TaskService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = database.Migrate(db)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return service.NewTaskService(repository.NewTaskRepository(db), logger)
}

// validCreateRequest 构造一个合法的创建请求
func validCreateRequest() *service.CreateTaskRequest {
	return &service.CreateTaskRequest{
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TaskName: "Grocery shopping",
		Priority: model.PriorityMedium,
		TaskType: model.TaskTypeHome,
	}
}

// TestTaskService_Create 测试创建任务:created_at == updated_at,id 唯一
func TestTaskService_Create(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(first.UpdatedAt))
	assert.Greater(t, first.ID, int64(0))

	second, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

// TestTaskService_Create_MissingFields 测试必填字段缺失返回验证错误
func TestTaskService_Create_MissingFields(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil)
	assert.ErrorIs(t, err, utils.ErrNilRequest)

	noDate := validCreateRequest()
	noDate.Date = time.Time{}
	_, err = svc.Create(ctx, noDate)
	assert.ErrorIs(t, err, utils.ErrMissingDate)

	noPriority := validCreateRequest()
	noPriority.Priority = ""
	_, err = svc.Create(ctx, noPriority)
	assert.ErrorIs(t, err, utils.ErrMissingPriority)

	noType := validCreateRequest()
	noType.TaskType = ""
	_, err = svc.Create(ctx, noType)
	assert.ErrorIs(t, err, utils.ErrMissingTaskType)
}

// TestTaskService_Create_EmptyName 测试空名称返回约束违反且无行持久化
func TestTaskService_Create_EmptyName(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	for _, name := range []string{"", "   "} {
		req := validCreateRequest()
		req.TaskName = name
		_, err := svc.Create(ctx, req)

		var violation *utils.ConstraintViolation
		assert.ErrorAs(t, err, &violation)
	}

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestTaskService_Create_InvalidEnums 测试闭合集合外的值返回约束违反
func TestTaskService_Create_InvalidEnums(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	badPriority := validCreateRequest()
	badPriority.Priority = "URGENT"
	_, err := svc.Create(ctx, badPriority)
	assert.ErrorIs(t, err, utils.ErrInvalidPriority)

	badType := validCreateRequest()
	badType.TaskType = "SCHOOL"
	_, err = svc.Create(ctx, badType)
	assert.ErrorIs(t, err, utils.ErrInvalidTaskType)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestTaskService_Create_PastDeadline 测试不晚于创建时间的 deadline 被拒绝
func TestTaskService_Create_PastDeadline(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	req := validCreateRequest()
	req.Deadline = &past
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, utils.ErrDeadlineNotAfterCreation)

	// deadline 等于(将要分配的)创建时间同样被拒绝:
	// created_at 在请求提交后才分配,必然晚于此处取的时间点
	now := time.Now()
	req = validCreateRequest()
	req.Deadline = &now
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, utils.ErrDeadlineNotAfterCreation)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestTaskService_EndToEnd 测试完整的创建-查询-更新-再查询场景
func TestTaskService_EndToEnd(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// deadline 与行的 created_at 比较,created_at 由系统取当前时间,
	// 所以场景里的 deadline 取创建之后的时间点
	comment := "Buy milk"
	deadline := time.Now().Add(96 * time.Hour)
	created, err := svc.Create(ctx, &service.CreateTaskRequest{
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TaskName: "Grocery shopping",
		Comment:  &comment,
		Deadline: &deadline,
		Priority: model.PriorityMedium,
		TaskType: model.TaskTypeHome,
	})
	require.NoError(t, err)

	// 按 ID 查询,字段逐一匹配
	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Grocery shopping", fetched.TaskName)
	require.NotNil(t, fetched.Comment)
	assert.Equal(t, "Buy milk", *fetched.Comment)
	assert.Equal(t, model.PriorityMedium, fetched.Priority)
	assert.Equal(t, model.TaskTypeHome, fetched.TaskType)
	require.NotNil(t, fetched.Deadline)

	time.Sleep(10 * time.Millisecond)

	// 更新优先级
	high := model.PriorityHigh
	updated, err := svc.Update(ctx, created.ID, &service.UpdateTaskRequest{Priority: &high})
	require.NoError(t, err)

	// 再次查询:priority 更新,updated_at 前移,created_at 和 id 不变
	fetched, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, fetched.Priority)
	assert.True(t, fetched.UpdatedAt.After(created.UpdatedAt))
	assert.WithinDuration(t, created.CreatedAt, fetched.CreatedAt, time.Second)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, updated.ID, fetched.ID)
}

// TestTaskService_Update_UnchangedFieldsAdvanceUpdatedAt 测试字段未变化的更新仍前移 updated_at
func TestTaskService_Update_UnchangedFieldsAdvanceUpdatedAt(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	name := created.TaskName
	updated, err := svc.Update(ctx, created.ID, &service.UpdateTaskRequest{TaskName: &name})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

// TestTaskService_Update_InvalidValues 测试更新时的约束违反
func TestTaskService_Update_InvalidValues(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	empty := "   "
	_, err = svc.Update(ctx, created.ID, &service.UpdateTaskRequest{TaskName: &empty})
	assert.ErrorIs(t, err, utils.ErrEmptyTaskName)

	bad := model.Priority("URGENT")
	_, err = svc.Update(ctx, created.ID, &service.UpdateTaskRequest{Priority: &bad})
	assert.ErrorIs(t, err, utils.ErrInvalidPriority)

	// deadline 与原始 created_at 比较
	past := created.CreatedAt.Add(-time.Hour)
	_, err = svc.Update(ctx, created.ID, &service.UpdateTaskRequest{Deadline: &past})
	assert.ErrorIs(t, err, utils.ErrDeadlineNotAfterCreation)

	// 行保持不变
	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.TaskName, fetched.TaskName)
	assert.Equal(t, created.Priority, fetched.Priority)
	assert.Nil(t, fetched.Deadline)
}

// TestTaskService_Update_NotFound 测试更新不存在的任务
func TestTaskService_Update_NotFound(t *testing.T) {
	svc := setupTestService(t)

	name := "new name"
	_, err := svc.Update(context.Background(), 999, &service.UpdateTaskRequest{TaskName: &name})
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

// TestTaskService_Delete 测试删除语义
func TestTaskService_Delete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// 删除存在的任务后,按 ID 查询返回 not found
	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	// 删除不存在的任务上报 not found,不是致命错误
	err = svc.Delete(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

// TestTaskService_Search 测试过滤查询
func TestTaskService_Search(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityMedium, model.PriorityLow} {
		req := validCreateRequest()
		req.TaskName = "task " + string(p)
		req.Priority = p
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	medium := model.PriorityMedium
	tasks, err := svc.Search(ctx, &repository.TaskFilter{Priority: &medium})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

// TestNewTaskService_NilLogger 测试不传日志记录器时回退到默认记录器
func TestNewTaskService_NilLogger(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logging.SetLoggerOutput(io.Discard)
	svc := service.NewTaskService(repository.NewTaskRepository(db), nil)

	task, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Greater(t, task.ID, int64(0))
}
