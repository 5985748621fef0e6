package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/metrics"
	"github.com/nadmax/yantodo/internal/repository"
)

const (
	ClearPastScheduledJob = "clear_past_scheduled"
	RefreshActiveTasksJob = "refresh_active_tasks"
)

type MaintenanceHandler struct {
	tasks repository.TaskRepository
}

func NewMaintenanceHandler(tasks repository.TaskRepository) *MaintenanceHandler {
	return &MaintenanceHandler{tasks: tasks}
}

// ClearPastScheduled drops scheduled dates that fall before today for every
// user, so those todos become recommendation candidates again.
func (h *MaintenanceHandler) ClearPastScheduled(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() {
		metrics.RecordSweep(time.Since(start))
	}()

	cleared, err := h.tasks.ClearAllPastScheduled(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to clear past scheduled dates: %w", err)
	}

	metrics.RecordScheduledCleared("sweep", int(cleared))
	if cleared > 0 {
		logger.Info("cleared past scheduled dates", "cleared", cleared, "today", now.Format(time.DateOnly))
	}

	return nil
}

func (h *MaintenanceHandler) RefreshActiveTasks(ctx context.Context, _ time.Time) error {
	count, err := h.tasks.CountActiveTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count active todos: %w", err)
	}

	metrics.UpdateActiveTasks(count)
	return nil
}
