/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/config"
	"github.com/CherepinRO/my-organizer-db/internal/database"
	"github.com/CherepinRO/my-organizer-db/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations to create or update the tasks schema.
This command will:
- Create the tasks table with its CHECK constraints if it doesn't exist
- Update the table schema if needed
- Create indexes for the supported query patterns

The command uses the database configuration from the config file or environment variables.`,
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

		// 2. 连接数据库
		if cfg.Database.Driver == "sqlite" || cfg.Database.Driver == "sqlite3" {
			logger.Infof("connecting to sqlite database: %s", cfg.Database.Path)
		} else {
			logger.Infof("connecting to database: %s@%s:%d/%s",
				cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
		}
		// 生产环境使用生产连接池配置,其余环境带重试连接
		// (默认重试 3 次,初始间隔 1 秒,指数退避)
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

		// 3. 执行迁移
		logger.Info("running database migrations...")
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		logger.Info("database migrations completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	// 添加配置标志
	migrateCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.my-organizer-db)")
}
