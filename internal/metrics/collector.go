package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/model"
	"gorm.io/gorm"
)

// Collector 指标收集器
// 定期采集连接池状态和任务分布指标
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	mu      sync.Mutex
	started bool
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器,重复调用只生效一次
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	go c.collect()
}

// Stop 停止指标收集器并等待采集循环退出
// 未启动时直接返回
func (c *Collector) Stop() {
	c.cancel()

	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.done
	}
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	// 启动时先采集一次
	c.collectOnce()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.collectOnce()
		}
	}
}

// collectOnce 采集一轮指标
func (c *Collector) collectOnce() {
	UpdateDatabaseConnectionStats(c.db)
	c.collectTaskDistribution()
}

// collectTaskDistribution 采集任务分布指标
func (c *Collector) collectTaskDistribution() {
	var byPriority []struct {
		Priority string
		Count    int64
	}
	if err := c.db.Model(&model.Task{}).
		Select("priority, COUNT(*) as count").
		Group("priority").
		Scan(&byPriority).Error; err == nil {
		// 先清零,避免已清空的分组残留旧值
		for _, p := range model.Priorities() {
			SetTasksByPriority(string(p), 0)
		}
		for _, row := range byPriority {
			SetTasksByPriority(row.Priority, float64(row.Count))
		}
	}

	var byType []struct {
		TaskType string
		Count    int64
	}
	if err := c.db.Model(&model.Task{}).
		Select("task_type, COUNT(*) as count").
		Group("task_type").
		Scan(&byType).Error; err == nil {
		for _, t := range model.TaskTypes() {
			SetTasksByType(string(t), 0)
		}
		for _, row := range byType {
			SetTasksByType(row.TaskType, float64(row.Count))
		}
	}
}
