package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nadmax/yantodo/internal/config"
	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/repository/postgres"
	"github.com/nadmax/yantodo/internal/worker"
	"github.com/nadmax/yantodo/internal/worker/handlers"
)

func main() {
	var cfg config.WorkerConfig
	if err := config.Parse("yantodo-worker", "Periodic maintenance for the todo store.", &cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.LoggerConfig("worker")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Fatal("worker exited", "err", err)
	}
}

func run(cfg config.WorkerConfig) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repo, err := postgres.NewPostgresTaskRepository(cfg.PostgresDSN)
	if err != nil {
		return err
	}

	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close Postgres repository", "err", err)
		}
	}()

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%d", time.Now().Unix())
	}

	w := worker.NewWorker(workerID, loc)
	w.SetPollInterval(cfg.SweepInterval)

	maintenance := handlers.NewMaintenanceHandler(repo)
	w.RegisterHandler(handlers.ClearPastScheduledJob, maintenance.ClearPastScheduled)
	w.RegisterHandler(handlers.RefreshActiveTasksJob, maintenance.RefreshActiveTasks)

	if cfg.Once {
		return w.RunOnce(context.Background())
	}

	go w.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down worker", "worker_id", workerID)
	w.Stop()
	return nil
}
