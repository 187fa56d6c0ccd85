package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sahilchouksey/taskboard-api/api"
	"github.com/sahilchouksey/taskboard-api/config"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/router"
	"github.com/sahilchouksey/taskboard-api/services/cron"
	"github.com/sahilchouksey/taskboard-api/utils"
	"github.com/sahilchouksey/taskboard-api/utils/cache"
	"github.com/sahilchouksey/taskboard-api/utils/mq"
	"go.uber.org/zap"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	log, err := utils.NewLogger(getEnv.GO_ENV, getEnv.LOG_LEVEL)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv, log)
	if err != nil {
		log.Error("Check whether Postgres is running", zap.String("host", getEnv.DB_HOST), zap.String("port", getEnv.DB_PORT))
		return err
	}

	if err := store.Init(); err != nil {
		log.Error("Failed to initialize database tables", zap.Error(err))
		return err
	}

	// Login lockouts live in Redis when configured, otherwise in process memory
	var lockoutStore cache.Store = cache.NewMemoryCache()
	if getEnv.REDIS_URL != "" {
		rc, err := cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warn("Failed to connect to Redis, using in-memory lockouts", zap.Error(err))
		} else {
			lockoutStore = rc
			defer rc.Close()
		}
	}

	// RabbitMQ is optional; domain events are dropped without it
	var publisher mq.Publisher = mq.NopPublisher{}
	if getEnv.MQ_URL != "" {
		p, err := mq.NewPublisher(getEnv.MQ_URL)
		if err != nil {
			log.Warn("Failed to connect to RabbitMQ, events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}

	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store.GetDB(), log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("Failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}

	// Defer closing DB, MQ and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		publisher.Close()
		if err := store.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), log)
	app := server.GetEngine()

	router.SetupRoutes(app, router.Options{
		Store:     store,
		Env:       getEnv,
		Logger:    log,
		Publisher: publisher,
		Cache:     lockoutStore,
	})

	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		log.Info("Shutting down API server")
		if err := server.Shutdown(); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	return server.Run()
}
