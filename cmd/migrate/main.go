// Command migrate runs the GORM AutoMigrate against the configured database
// and exits. Usage: go run ./cmd/migrate
package main

import (
	"log"

	"github.com/sahilchouksey/taskboard-api/config"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/utils"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatal("Failed to load environment variables:", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	logger, err := utils.NewLogger(env.GO_ENV, env.LOG_LEVEL)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := database.StartGORM(env, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if err := store.HealthCheck(); err != nil {
		logger.Fatal("Database health check failed", zap.Error(err))
	}

	logger.Info("All migrations completed successfully")
}
