package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sahilchouksey/taskboard-api/config"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/handlers"
	auth_handlers "github.com/sahilchouksey/taskboard-api/handlers/auth"
	project_handlers "github.com/sahilchouksey/taskboard-api/handlers/project"
	task_handlers "github.com/sahilchouksey/taskboard-api/handlers/task"
	"github.com/sahilchouksey/taskboard-api/services"
	"github.com/sahilchouksey/taskboard-api/utils"
	"github.com/sahilchouksey/taskboard-api/utils/auth"
	"github.com/sahilchouksey/taskboard-api/utils/cache"
	"github.com/sahilchouksey/taskboard-api/utils/middleware"
	"github.com/sahilchouksey/taskboard-api/utils/mq"
	"go.uber.org/zap"
)

// Options carries everything the routes depend on. Cache and Publisher are optional.
type Options struct {
	Store     database.Storage
	Env       *config.EnvironmentVariable
	Logger    *zap.Logger
	Publisher mq.Publisher
	Cache     cache.Store
	// DisableAccessLog silences the request logger, mostly for tests
	DisableAccessLog bool
}

func SetupRoutes(app *fiber.App, opts Options) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: opts.Env.JWT_SECRET,
		Expiry: opts.Env.JWT_EXPIRY,
		Issuer: opts.Env.JWT_ISSUER,
	})

	db := opts.Store.GetDB()

	// Login lockouts need a counter store
	var bruteForceProtection *middleware.BruteForceProtection
	if opts.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(opts.Cache, log)
	} else {
		log.Warn("No cache configured, brute force protection is disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db, log)

	// Services
	policy := services.NewOwnershipPolicy(db)
	authService := services.NewAuthService(db, jwtManager, log)
	projectService := services.NewProjectService(db, policy, publisher, log)
	taskService := services.NewTaskService(db, policy, projectService, publisher, log)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(authService, bruteForceProtection)
	projectHandler := project_handlers.NewProjectHandler(projectService)
	taskHandler := task_handlers.NewTaskHandler(taskService)

	var accessLog *zap.Logger
	if !opts.DisableAccessLog {
		accessLog = log.Named("http")
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    opts.Env.ALLOWED_ORIGINS,
		RateLimitRequests: opts.Env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   1 * time.Minute,
		AccessLog:         accessLog,
	})
	app.Use(middleware.Metrics())

	// Public endpoints
	app.Get("/healthz", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, opts.Store))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckLockout(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Delete("/logout", authMiddleware.Required(), authHandler.Logout)

	// Projects routes (all protected)
	projects := api.Group("/projects", authMiddleware.Required())
	projects.Get("/", projectHandler.ListProjects)
	projects.Post("/create", projectHandler.CreateProject)
	projects.Get("/:id/show", projectHandler.GetProject)
	projects.Put("/:id/edit", projectHandler.UpdateProject)
	projects.Delete("/:id/delete", projectHandler.DeleteProject)

	// Tasks routes (nested under projects)
	tasks := projects.Group("/:pid/tasks")
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Post("/create", taskHandler.CreateTask)
	tasks.Get("/:tid/show", taskHandler.GetTask)
	tasks.Put("/:tid/edit", taskHandler.UpdateTask)
	tasks.Patch("/:tid/status-done", taskHandler.MarkTaskDone)
	tasks.Delete("/:tid/delete", taskHandler.DeleteTask)
}
