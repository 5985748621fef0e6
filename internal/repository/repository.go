// Package repository declares the storage contracts for todos and user
// settings. Implementations live in the postgres and redis subpackages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nadmax/yantodo/internal/settings"
	"github.com/nadmax/yantodo/internal/task"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	// ErrConflict is returned when concurrent writers kept invalidating an
	// update after all retries.
	ErrConflict = errors.New("update conflict")
)

type TaskRepository interface {
	// ListTasks returns every todo of the user, newest first.
	ListTasks(ctx context.Context, userID string) ([]*task.Task, error)
	// ListActiveTasks returns the user's incomplete todos, newest first.
	ListActiveTasks(ctx context.Context, userID string) ([]*task.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, userID, taskID string) error
	// ClearPastScheduled removes scheduled dates strictly before today and
	// returns the ids of the affected todos.
	ClearPastScheduled(ctx context.Context, userID string, today time.Time) ([]string, error)
	ClearAllPastScheduled(ctx context.Context, today time.Time) (int64, error)
	CountActiveTasks(ctx context.Context) (int64, error)
	Close() error
}

type SettingsRepository interface {
	// GetSettings returns the stored settings, or defaults when the user has
	// none yet.
	GetSettings(ctx context.Context, userID string) (*settings.Settings, error)
	// UpdateSettings applies fn to the current settings and stores the
	// result atomically. Nothing is stored when fn returns an error.
	UpdateSettings(ctx context.Context, userID string, fn func(*settings.Settings) error) (*settings.Settings, error)
	Close() error
}
