/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/config"
	"github.com/CherepinRO/my-organizer-db/internal/database"
	"github.com/CherepinRO/my-organizer-db/internal/logging"
	"github.com/CherepinRO/my-organizer-db/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Serve prometheus metrics for the task store",
	Long: `Run the metrics collector against the configured database and expose
prometheus metrics on the configured address. The collector periodically
samples connection pool state and task distribution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := logging.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 2. 连接数据库,生产环境使用生产连接池配置
		var db *gorm.DB
		if config.IsProduction(cfg) {
			db, err = database.ConnectProduction(cfg.Database)
		} else {
			db, err = database.ConnectWithRetry(cfg.Database, 3, time.Second)
		}
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		// 3. 配置热加载:运行期间允许调整日志级别
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				if level, err := logrus.ParseLevel(newCfg.Log.Level); err == nil {
					logger.SetLevel(level)
					logger.Infof("log level changed to %s", newCfg.Log.Level)
				}
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("config watcher failed to start")
			} else {
				defer watcher.Stop()
			}
		}

		// 4. 启动指标收集与指标服务
		interval := time.Duration(cfg.Metrics.CollectInterval) * time.Second
		collector := metrics.NewCollector(db, interval)
		collector.Start()
		defer func() {
			collector.Stop()
		}()

		server := metrics.StartMetricsServer(cfg.Metrics.Addr)
		logger.Infof("metrics server listening on %s", cfg.Metrics.Addr)

		// 5. 周期健康检查,连接失效时重连并重建收集器
		healthTicker := time.NewTicker(30 * time.Second)
		defer healthTicker.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case <-healthTicker.C:
				if database.CheckHealth(db) {
					continue
				}
				logger.Warn("database health check failed, reconnecting...")
				newDB, err := database.Reconnect(cfg.Database, db)
				if err != nil {
					logger.WithError(err).Error("failed to reconnect database")
					continue
				}
				db = newDB
				collector.Stop()
				collector = metrics.NewCollector(db, interval)
				collector.Start()
				logger.Info("database reconnected")
			case <-quit:
				logger.Info("shutting down metrics server...")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(ctx)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.my-organizer-db)")
}
