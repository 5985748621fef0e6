// Package mocks provides in-memory repository implementations that record
// their calls, for use in tests.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nadmax/yantodo/internal/repository"
	"github.com/nadmax/yantodo/internal/settings"
	"github.com/nadmax/yantodo/internal/task"
)

type MockTaskRepository struct {
	mu                      sync.Mutex
	Tasks                   map[string]*task.Task
	CreateTaskCalls         []*task.Task
	UpdateTaskCalls         []*task.Task
	DeleteTaskCalls         []string
	ClearPastScheduledCalls []time.Time
	ListTasksError          error
	ListActiveTasksError    error
	GetTaskError            error
	CreateTaskError         error
	UpdateTaskError         error
	DeleteTaskError         error
	ClearPastScheduledError error
	CountActiveTasksError   error
	Closed                  bool
}

var _ repository.TaskRepository = (*MockTaskRepository)(nil)

func NewMockTaskRepository(tasks ...*task.Task) *MockTaskRepository {
	m := &MockTaskRepository{Tasks: make(map[string]*task.Task)}
	for _, t := range tasks {
		taskCopy := *t
		m.Tasks[t.ID] = &taskCopy
	}

	return m
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListTasksError != nil {
		return nil, m.ListTasksError
	}

	return m.collect(func(t *task.Task) bool { return t.UserID == userID }), nil
}

func (m *MockTaskRepository) ListActiveTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListActiveTasksError != nil {
		return nil, m.ListActiveTasksError
	}

	return m.collect(func(t *task.Task) bool { return t.UserID == userID && !t.Completed }), nil
}

func (m *MockTaskRepository) GetTask(ctx context.Context, userID, taskID string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetTaskError != nil {
		return nil, m.GetTaskError
	}

	t, exists := m.Tasks[taskID]
	if !exists || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}

	taskCopy := *t
	return &taskCopy, nil
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateTaskCalls = append(m.CreateTaskCalls, t)

	if m.CreateTaskError != nil {
		return m.CreateTaskError
	}

	taskCopy := *t
	m.Tasks[t.ID] = &taskCopy
	return nil
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateTaskCalls = append(m.UpdateTaskCalls, t)

	if m.UpdateTaskError != nil {
		return m.UpdateTaskError
	}

	existing, exists := m.Tasks[t.ID]
	if !exists || existing.UserID != t.UserID {
		return repository.ErrTaskNotFound
	}

	taskCopy := *t
	m.Tasks[t.ID] = &taskCopy
	return nil
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, userID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteTaskCalls = append(m.DeleteTaskCalls, taskID)

	if m.DeleteTaskError != nil {
		return m.DeleteTaskError
	}

	t, exists := m.Tasks[taskID]
	if !exists || t.UserID != userID {
		return repository.ErrTaskNotFound
	}

	delete(m.Tasks, taskID)
	return nil
}

func (m *MockTaskRepository) ClearPastScheduled(ctx context.Context, userID string, today time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClearPastScheduledCalls = append(m.ClearPastScheduledCalls, today)

	if m.ClearPastScheduledError != nil {
		return nil, m.ClearPastScheduledError
	}

	return m.clearBefore(today, func(t *task.Task) bool { return t.UserID == userID }), nil
}

func (m *MockTaskRepository) ClearAllPastScheduled(ctx context.Context, today time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClearPastScheduledCalls = append(m.ClearPastScheduledCalls, today)

	if m.ClearPastScheduledError != nil {
		return 0, m.ClearPastScheduledError
	}

	ids := m.clearBefore(today, func(*task.Task) bool { return true })
	return int64(len(ids)), nil
}

func (m *MockTaskRepository) CountActiveTasks(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CountActiveTasksError != nil {
		return 0, m.CountActiveTasksError
	}

	var count int64
	for _, t := range m.Tasks {
		if !t.Completed {
			count++
		}
	}

	return count, nil
}

func (m *MockTaskRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

func (m *MockTaskRepository) Get(taskID string) (*task.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, exists := m.Tasks[taskID]
	if !exists {
		return nil, false
	}

	taskCopy := *t
	return &taskCopy, true
}

// collect returns copies of the matching tasks, newest first.
func (m *MockTaskRepository) collect(match func(*task.Task) bool) []*task.Task {
	tasks := []*task.Task{}
	for _, t := range m.Tasks {
		if match(t) {
			taskCopy := *t
			tasks = append(tasks, &taskCopy)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks
}

func (m *MockTaskRepository) clearBefore(today time.Time, match func(*task.Task) bool) []string {
	start := task.StartOfDay(today)
	ids := []string{}
	for _, t := range m.Tasks {
		if match(t) && t.ScheduledDate != nil && t.ScheduledDate.Before(start) {
			t.ScheduledDate = nil
			ids = append(ids, t.ID)
		}
	}
	sort.Strings(ids)

	return ids
}

type MockSettingsRepository struct {
	mu                  sync.Mutex
	Settings            map[string]*settings.Settings
	UpdateSettingsCalls []string
	GetSettingsError    error
	UpdateSettingsError error
	Now                 func() time.Time
	Closed              bool
}

var _ repository.SettingsRepository = (*MockSettingsRepository)(nil)

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Settings: make(map[string]*settings.Settings),
		Now:      time.Now,
	}
}

func (m *MockSettingsRepository) GetSettings(ctx context.Context, userID string) (*settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetSettingsError != nil {
		return nil, m.GetSettingsError
	}

	s := m.current(userID)
	if _, exists := m.Settings[userID]; !exists {
		stored := *s
		m.Settings[userID] = &stored
	}

	return s, nil
}

func (m *MockSettingsRepository) UpdateSettings(ctx context.Context, userID string, fn func(*settings.Settings) error) (*settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateSettingsCalls = append(m.UpdateSettingsCalls, userID)

	if m.UpdateSettingsError != nil {
		return nil, m.UpdateSettingsError
	}

	s := m.current(userID)
	if err := fn(s); err != nil {
		return nil, err
	}

	stored := *s
	m.Settings[userID] = &stored
	return s, nil
}

func (m *MockSettingsRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

// Put stores s as the user's current settings.
func (m *MockSettingsRepository) Put(s *settings.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *s
	m.Settings[s.UserID] = &stored
}

func (m *MockSettingsRepository) current(userID string) *settings.Settings {
	if s, exists := m.Settings[userID]; exists {
		settingsCopy := *s
		return &settingsCopy
	}

	return settings.Default(userID, m.Now())
}
