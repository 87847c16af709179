package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/adapters/http/handlers"
	"creditoya-web/internal/adapters/http/middleware"
	"creditoya-web/internal/adapters/http/routes"
	"creditoya-web/internal/adapters/http/views"
	"creditoya-web/internal/adapters/persistence/models"
	"creditoya-web/internal/adapters/persistence/repositories"
	"creditoya-web/internal/config"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	_ "creditoya-web/docs" // Swagger docs
)

// @title CreditoYa Web API
// @version 1.0
// @description Client-facing proxy for the CreditoYa loan gateway.

// @contact.name CreditoYa Soporte
// @contact.email soporte@creditoya.space

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name creditoya_token

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load configuration")
	}
	logger.Init(cfg.AppMode, cfg.LogLevel)
	logger.Log.WithField("mode", cfg.AppMode).Info("configuration loaded")

	repo, checks, closeStore := openPendingStore(cfg)
	defer closeStore()

	pending := services.NewPendingLoanService(repo, cfg.Pending.Lifetime)

	cronService, err := services.NewCronService(pending)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to schedule jobs")
	}
	cronService.Start()
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "CreditoYa Web",
		ErrorHandler: middleware.CustomErrorHandler,
		Views:        views.NewEngine(cfg.IsDev()),
		BodyLimit:    20 * 1024 * 1024,
	})

	middleware.Setup(app, cfg)

	routes.Setup(app, routes.Deps{
		Gateway:      gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout),
		Pending:      pending,
		HealthChecks: checks,
	}, cfg)

	go gracefulShutdown(app)

	logger.Log.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"gateway": cfg.Gateway.BaseURL,
		"store":   cfg.Pending.Store,
	}).Info("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.WithError(err).Fatal("failed to start server")
	}
}

// openPendingStore selects the pending loan repository from config
func openPendingStore(cfg *config.Config) (repositories.PendingLoanRepository, map[string]handlers.Checker, func()) {
	switch cfg.Pending.Store {
	case "mysql":
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to database")
		}
		if err := models.AutoMigrate(db); err != nil {
			logger.Log.WithError(err).Fatal("failed to auto migrate")
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to get sql.DB")
		}
		checks := map[string]handlers.Checker{"database": sqlDB.PingContext}
		return repositories.NewPendingLoanRepository(db), checks, func() { _ = config.CloseDatabase(db) }

	case "redis":
		client, err := config.ConnectRedis(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to redis")
		}
		checks := map[string]handlers.Checker{"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}}
		return repositories.NewRedisPendingLoanRepository(client), checks, func() { _ = client.Close() }

	default:
		logger.Log.Warn("pending loans kept in memory, use mysql or redis when running more than one instance")
		return repositories.NewMemoryPendingLoanRepository(), nil, func() {}
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Log.WithError(err).Error("error during shutdown")
	}
	logger.Log.Info("server stopped gracefully")
}
