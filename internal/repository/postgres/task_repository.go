// Package postgres provides PostgreSQL-backed implementations of repository interfaces.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/repository"
	"github.com/nadmax/yantodo/internal/task"
)

const schema = `
	CREATE TABLE IF NOT EXISTS todos (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		title             TEXT NOT NULL,
		description       TEXT,
		priority          TEXT NOT NULL DEFAULT 'low',
		completed         BOOLEAN NOT NULL DEFAULT FALSE,
		due_date          TIMESTAMPTZ,
		constant_due_days INTEGER,
		scheduled_date    TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_todos_user_created ON todos (user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_todos_scheduled ON todos (scheduled_date) WHERE scheduled_date IS NOT NULL;
`

const legacyPriorityMigration = `
	UPDATE todos SET priority = 'low', updated_at = NOW()
	WHERE priority NOT IN ('low', 'high')
`

const todoColumns = `
	id, user_id, title, description, priority, completed,
	due_date, constant_due_days, scheduled_date, created_at, updated_at
`

type PostgresTaskRepository struct {
	db *sql.DB
}

var _ repository.TaskRepository = (*PostgresTaskRepository)(nil)

func NewPostgresTaskRepository(connectionString string) (*PostgresTaskRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresTaskRepository{db: db}, nil
}

// Migrate creates the schema and rewrites priorities outside the two-level
// scale to low.
func (r *PostgresTaskRepository) Migrate(ctx context.Context) (int64, error) {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return 0, fmt.Errorf("failed to create schema: %w", err)
	}

	res, err := r.db.ExecContext(ctx, legacyPriorityMigration)
	if err != nil {
		return 0, fmt.Errorf("failed to normalize priorities: %w", err)
	}

	return res.RowsAffected()
}

func (r *PostgresTaskRepository) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.queryTasks(ctx, query, userID)
}

func (r *PostgresTaskRepository) ListActiveTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1 AND completed = FALSE
		ORDER BY created_at DESC
	`

	return r.queryTasks(ctx, query, userID)
}

func (r *PostgresTaskRepository) GetTask(ctx context.Context, userID, taskID string) (*task.Task, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE id = $1 AND user_id = $2
	`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (r *PostgresTaskRepository) CreateTask(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO todos (
			id, user_id, title, description, priority, completed,
			due_date, constant_due_days, scheduled_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.UserID,
		t.Title,
		nullString(t.Description),
		string(t.Priority),
		t.Completed,
		nullTime(t.DueDate),
		nullInt(t.ConstantDueDays),
		nullTime(t.ScheduledDate),
		t.CreatedAt,
		t.UpdatedAt,
	)

	return err
}

func (r *PostgresTaskRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE todos
		SET title = $1,
		    description = $2,
		    priority = $3,
		    completed = $4,
		    due_date = $5,
		    constant_due_days = $6,
		    scheduled_date = $7,
		    updated_at = $8
		WHERE id = $9 AND user_id = $10
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		t.Title,
		nullString(t.Description),
		string(t.Priority),
		t.Completed,
		nullTime(t.DueDate),
		nullInt(t.ConstantDueDays),
		nullTime(t.ScheduledDate),
		t.UpdatedAt,
		t.ID,
		t.UserID,
	)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (r *PostgresTaskRepository) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (r *PostgresTaskRepository) ClearPastScheduled(ctx context.Context, userID string, today time.Time) ([]string, error) {
	query := `
		UPDATE todos
		SET scheduled_date = NULL, updated_at = NOW()
		WHERE user_id = $1 AND scheduled_date IS NOT NULL AND scheduled_date < $2
		RETURNING id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, task.StartOfDay(today))
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn("failed to close rows", "err", err)
		}
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *PostgresTaskRepository) ClearAllPastScheduled(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE todos
		SET scheduled_date = NULL, updated_at = NOW()
		WHERE scheduled_date IS NOT NULL AND scheduled_date < $1
	`
	res, err := r.db.ExecContext(ctx, query, task.StartOfDay(today))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *PostgresTaskRepository) CountActiveTasks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE completed = FALSE`).Scan(&count)

	return count, err
}

func (r *PostgresTaskRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn("failed to close rows", "err", err)
		}
	}()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*task.Task, error) {
	var t task.Task
	var priority string
	var description sql.NullString
	var dueDate, scheduledDate sql.NullTime
	var constantDueDays sql.NullInt64

	err := s.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&description,
		&priority,
		&t.Completed,
		&dueDate,
		&constantDueDays,
		&scheduledDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Rows written before the migration may still carry other values.
	t.Priority, err = task.ParsePriority(priority)
	if err != nil {
		t.Priority = task.LowPriority
	}

	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if constantDueDays.Valid {
		days := int(constantDueDays.Int64)
		t.ConstantDueDays = &days
	}
	if scheduledDate.Valid {
		t.ScheduledDate = &scheduledDate.Time
	}

	return &t, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrTaskNotFound
	}

	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
