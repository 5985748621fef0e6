package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nadmax/yantodo/internal/metrics"
	"github.com/nadmax/yantodo/internal/repository/mocks"
	"github.com/nadmax/yantodo/internal/task"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeTasksGauge(t *testing.T) float64 {
	metric := &dto.Metric{}
	require.NoError(t, metrics.ActiveTasks.Write(metric))
	return metric.Gauge.GetValue()
}

func TestUpdateTaskMetrics(t *testing.T) {
	done := task.NewTask("user-1", "done", task.LowPriority)
	done.Completed = true
	repo := mocks.NewMockTaskRepository(
		task.NewTask("user-1", "a", task.LowPriority),
		task.NewTask("user-2", "b", task.HighPriority),
		task.NewTask("user-2", "c", task.LowPriority),
		done,
	)

	updateTaskMetrics(context.Background(), repo)

	assert.Equal(t, 3.0, activeTasksGauge(t))
}

func TestUpdateTaskMetrics_KeepsLastValueOnError(t *testing.T) {
	metrics.UpdateActiveTasks(7)
	repo := mocks.NewMockTaskRepository()
	repo.CountActiveTasksError = errors.New("connection reset")

	updateTaskMetrics(context.Background(), repo)

	assert.Equal(t, 7.0, activeTasksGauge(t))
}

func TestStartMetricsCollector_StopsWithContext(t *testing.T) {
	repo := mocks.NewMockTaskRepository(task.NewTask("user-1", "a", task.LowPriority))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		startMetricsCollector(ctx, repo, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return activeTasksGauge(t) == 1.0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}
