package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/lewlew/lewlew-server/internal/cache"
	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/database"
	"github.com/lewlew/lewlew-server/internal/handlers"
	"github.com/lewlew/lewlew-server/internal/logging"
	"github.com/lewlew/lewlew-server/internal/middleware"
	"github.com/lewlew/lewlew-server/internal/moderation"
	"github.com/lewlew/lewlew-server/internal/routes"
	"github.com/lewlew/lewlew-server/internal/scheduler"
	"github.com/lewlew/lewlew-server/internal/services"
	"github.com/lewlew/lewlew-server/internal/ws"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Redis: verification codes and SMS throttling
	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Real-time hub
	hub := ws.NewHub()
	go hub.Run()

	// Services
	smsService := services.NewSMSService(cfg)
	authService := services.NewAuthService(database.DB, cfg, redisCache, smsService)
	userService := services.NewUserService(database.DB)
	notificationService := services.NewNotificationService(database.DB, hub)
	postService := services.NewPostService(database.DB, cfg, notificationService)
	commentService := services.NewCommentService(database.DB, postService, notificationService)
	likeService := services.NewLikeService(database.DB, postService, notificationService)
	friendService := services.NewFriendService(database.DB, notificationService)

	analyzer := moderation.NewClient(cfg)
	reportStore := services.NewGormReportStore(database.DB)
	reportService := services.NewReportService(reportStore, postService, notificationService, analyzer)
	reportService.StartWorkers(cfg.AnalysisWorkers)

	adminService := services.NewAdminService(database.DB, reportService)

	uploadService, err := services.NewUploadService(database.DB, cfg)
	if err != nil {
		slog.Error("upload service init failed", "error", err)
		os.Exit(1)
	}

	// Expired-post purge
	purgeDone := make(chan struct{})
	scheduler.StartPostPurge(postService, cfg.PostPurgeAfter, purgeDone)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, hub, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService, friendService),
		Post:         handlers.NewPostHandler(postService),
		Comment:      handlers.NewCommentHandler(commentService, likeService),
		Friend:       handlers.NewFriendHandler(friendService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Report:       handlers.NewReportHandler(reportService),
		Upload:       handlers.NewUploadHandler(uploadService),
		Admin:        handlers.NewAdminHandler(adminService, postService),
		Health:       handlers.NewHealthHandler(),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(purgeDone)
	close(cleanupDone)
	reportService.Stop()
	hub.Stop()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := redisCache.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
