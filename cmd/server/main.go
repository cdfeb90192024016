package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/ttr-scheduler/internal/config"
	"github.com/arnavshah/ttr-scheduler/internal/logging"
	"github.com/arnavshah/ttr-scheduler/pkg/auth"
	"github.com/arnavshah/ttr-scheduler/pkg/database"
	"github.com/arnavshah/ttr-scheduler/pkg/handlers"
	"github.com/arnavshah/ttr-scheduler/pkg/metrics"
)

const version = "1.0.0"

func main() {
	settings, cfgErr := config.Load()

	logger, err := logging.New(os.Stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		logger.Warn("logging settings ignored", slog.Any("error", err))
	}
	slog.SetDefault(logger)
	if cfgErr != nil {
		logger.Error("invalid configuration", slog.Any("error", cfgErr))
		os.Exit(1)
	}
	if settings.JWTSecret == "" || settings.APIMasterSecret == "" {
		logger.Warn("JWT_SECRET or API_MASTER_SECRET is empty; tokens and keys are not secure")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(settings.DatabaseURL, settings.DataPath)
	if err != nil {
		logger.Error("database unavailable", slog.Any("error", err))
		os.Exit(1)
	}
	created, err := auth.EnsureAdminExists(db, settings.AdminUsername, settings.AdminPassword)
	if err != nil {
		logger.Error("could not create admin user", slog.Any("error", err))
		os.Exit(1)
	}
	if created {
		logger.Info("default admin user created", slog.String("username", settings.AdminUsername))
	}

	h := &handlers.Handler{
		DB:       db,
		Auth:     auth.New(settings.JWTSecret, settings.APIMasterSecret),
		Defaults: settings.Engine,
		Metrics:  metrics.NewPrometheus(prometheus.DefaultRegisterer, ""),
		Logger:   logger,
		Version:  version,
	}
	r := handlers.NewRouter(h, prometheus.DefaultGatherer)

	logger.Info("server starting", slog.String("port", settings.Port))
	if err := r.Run(":" + settings.Port); err != nil {
		logger.Error("could not run server", slog.Any("error", err))
		os.Exit(1)
	}
}
