package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// 任务创建数
	tasksCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_created_total",
			Help: "Total number of tasks created",
		},
	)

	// 任务更新数
	tasksUpdatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_updated_total",
			Help: "Total number of tasks updated",
		},
	)

	// 任务删除数
	tasksDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_deleted_total",
			Help: "Total number of tasks deleted",
		},
	)

	// 被拒绝的写入数(按违反的规则分类)
	constraintViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "constraint_violations_total",
			Help: "Total number of writes rejected by a constraint",
		},
		[]string{"rule"},
	)

	// 存储操作耗时
	storageOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	// 任务优先级分布
	tasksByPriority = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasks_by_priority",
			Help: "Number of tasks by priority",
		},
		[]string{"priority"},
	)

	// 任务类型分布
	tasksByType = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasks_by_type",
			Help: "Number of tasks by task type",
		},
		[]string{"task_type"},
	)
)

func init() {
	prometheus.MustRegister(
		tasksCreatedTotal,
		tasksUpdatedTotal,
		tasksDeletedTotal,
		constraintViolationsTotal,
		storageOperationDuration,
		databaseConnectionsActive,
		databaseConnectionsIdle,
		databaseConnectionsMax,
		tasksByPriority,
		tasksByType,
	)
}

// RecordTaskCreated 记录任务创建
func RecordTaskCreated() {
	tasksCreatedTotal.Inc()
}

// RecordTaskUpdated 记录任务更新
func RecordTaskUpdated() {
	tasksUpdatedTotal.Inc()
}

// RecordTaskDeleted 记录任务删除
func RecordTaskDeleted() {
	tasksDeletedTotal.Inc()
}

// RecordConstraintViolation 记录被约束拒绝的写入
func RecordConstraintViolation(rule string) {
	constraintViolationsTotal.WithLabelValues(rule).Inc()
}

// ObserveStorageOperation 记录存储操作耗时
func ObserveStorageOperation(operation string, seconds float64) {
	storageOperationDuration.WithLabelValues(operation).Observe(seconds)
}

// UpdateDatabaseConnectionStats 更新数据库连接池指标
func UpdateDatabaseConnectionStats(db *gorm.DB) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))
}

// SetTasksByPriority 更新优先级分布指标
func SetTasksByPriority(priority string, count float64) {
	tasksByPriority.WithLabelValues(priority).Set(count)
}

// SetTasksByType 更新任务类型分布指标
func SetTasksByType(taskType string, count float64) {
	tasksByType.WithLabelValues(taskType).Set(count)
}

// Handler 返回 prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer 启动指标服务
func StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		_ = server.ListenAndServe()
	}()

	return server
}
