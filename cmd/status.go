/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/CherepinRO/my-organizer-db/internal/config"
	"github.com/CherepinRO/my-organizer-db/internal/database"
	"github.com/CherepinRO/my-organizer-db/internal/model"
	"github.com/CherepinRO/my-organizer-db/internal/repository"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store health and task statistics",
	Long: `Check database connectivity and print task distribution statistics
(counts by priority and by task type).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 连接数据库
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		// 3. 健康检查
		if !database.CheckHealth(db) {
			return fmt.Errorf("database health check failed")
		}
		fmt.Println("database: healthy")

		// 4. 任务分布统计
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		repo := repository.NewTaskRepository(db)

		byPriority, err := repo.CountByPriority(ctx)
		if err != nil {
			return fmt.Errorf("failed to count tasks by priority: %w", err)
		}
		var total int64
		fmt.Println("tasks by priority:")
		for _, p := range model.Priorities() {
			fmt.Printf("  %-6s %d\n", p, byPriority[p])
			total += byPriority[p]
		}

		byType, err := repo.CountByType(ctx)
		if err != nil {
			return fmt.Errorf("failed to count tasks by type: %w", err)
		}
		fmt.Println("tasks by type:")
		for _, t := range model.TaskTypes() {
			fmt.Printf("  %-6s %d\n", t, byType[t])
		}

		fmt.Printf("total tasks: %d\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.my-organizer-db)")
}
