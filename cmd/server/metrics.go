package main

import (
	"context"
	"time"

	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/metrics"
)

type activeTaskCounter interface {
	CountActiveTasks(ctx context.Context) (int64, error)
}

func startMetricsCollector(ctx context.Context, repo activeTaskCounter, interval time.Duration) {
	updateTaskMetrics(ctx, repo)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateTaskMetrics(ctx, repo)
		}
	}
}

func updateTaskMetrics(ctx context.Context, repo activeTaskCounter) {
	count, err := repo.CountActiveTasks(ctx)
	if err != nil {
		logger.Warn("failed to count active todos for metrics", "err", err)
		return
	}

	metrics.UpdateActiveTasks(count)
}
