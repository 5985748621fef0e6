package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nadmax/yantodo/internal/api"
	"github.com/nadmax/yantodo/internal/config"
	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/middleware"
	"github.com/nadmax/yantodo/internal/recommend"
	"github.com/nadmax/yantodo/internal/repository/postgres"
	"github.com/nadmax/yantodo/internal/repository/redis"
	"github.com/nadmax/yantodo/internal/stats"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var cfg config.ServerConfig
	if err := config.Parse("yantodo-server", "Todo API with weighted task recommendations.", &cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.LoggerConfig("server")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Fatal("server exited", "err", err)
	}
}

func run(cfg config.ServerConfig) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tasks, err := postgres.NewPostgresTaskRepository(cfg.PostgresDSN)
	if err != nil {
		return err
	}

	defer func() {
		if err := tasks.Close(); err != nil {
			logger.Warn("failed to close Postgres repository", "err", err)
		}
	}()

	normalized, err := tasks.Migrate(ctx)
	if err != nil {
		return err
	}
	if normalized > 0 {
		logger.Info("normalized legacy priorities", "rows", normalized)
	}

	settingsRepo, err := redis.NewSettingsRepository(cfg.RedisAddr)
	if err != nil {
		return err
	}

	defer func() {
		if err := settingsRepo.Close(); err != nil {
			logger.Warn("failed to close Redis repository", "err", err)
		}
	}()

	recommender := recommend.NewService(tasks, settingsRepo)
	recommender.SetLocation(loc)

	apiHandler := api.NewAPI(tasks, settingsRepo, recommender, stats.NewDashboard(tasks, loc))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", middleware.MetricsMiddleware(apiHandler))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.UserIDHeader},
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go startMetricsCollector(ctx, tasks, cfg.MetricsInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "timezone", loc.String(), "redis", cfg.RedisAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
