package handler

import (
	"log/slog"
	"net/http"
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

var r http.Handler

func init() {
	// .env is only present with vercel dev
	settings, err := config.Load()
	logger, _ := logging.New(os.Stderr, settings.LogLevel, "json")
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		r = unavailable("invalid configuration")
		return
	}

	db, err := database.InitDB(settings.DatabaseURL, settings.DataPath)
	if err != nil {
		logger.Error("database unavailable", slog.Any("error", err))
		r = unavailable("database unavailable")
		return
	}
	if _, err := auth.EnsureAdminExists(db, settings.AdminUsername, settings.AdminPassword); err != nil {
		logger.Error("could not create admin user", slog.Any("error", err))
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(&handlers.Handler{
		DB:       db,
		Auth:     auth.New(settings.JWTSecret, settings.APIMasterSecret),
		Defaults: settings.Engine,
		Metrics:  metrics.NewPrometheus(prometheus.DefaultRegisterer, ""),
		Logger:   logger,
		Version:  "1.0.0",
	}, prometheus.DefaultGatherer)
}

func unavailable(msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, msg, http.StatusServiceUnavailable)
	})
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
