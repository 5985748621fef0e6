// Package stats serves per-user todo statistics.
package stats

import (
	"net/http"
	"time"

	"github.com/nadmax/yantodo/internal/algorithm"
	"github.com/nadmax/yantodo/internal/httputil"
	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/middleware"
	"github.com/nadmax/yantodo/internal/repository"
	"github.com/nadmax/yantodo/internal/task"
)

type Dashboard struct {
	tasks repository.TaskRepository
	now   func() time.Time
	loc   *time.Location
}

type Stats struct {
	TotalTodos       int       `json:"total_todos"`
	ActiveTodos      int       `json:"active_todos"`
	CompletedTodos   int       `json:"completed_todos"`
	OverdueTodos     int       `json:"overdue_todos"`
	DueToday         int       `json:"due_today"`
	ScheduledLater   int       `json:"scheduled_later"`
	HighPriority     int       `json:"high_priority"`
	Candidates       int       `json:"candidates"`
	CandidateWeight  float64   `json:"candidate_weight"`
	CompletionRate   float64   `json:"completion_rate"`
	OldestActiveDays *int      `json:"oldest_active_days,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

func NewDashboard(tasks repository.TaskRepository, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.Local
	}

	return &Dashboard{tasks: tasks, now: time.Now, loc: loc}
}

func (d *Dashboard) SetClock(now func() time.Time) {
	d.now = now
}

// Compute summarizes tasks as of today. High priority, due today and
// candidate figures count open todos only.
func Compute(tasks []*task.Task, today time.Time) Stats {
	stats := Stats{
		TotalTodos:  len(tasks),
		LastUpdated: today,
	}

	var oldest *time.Time
	for _, t := range tasks {
		if t.Completed {
			stats.CompletedTodos++
			continue
		}

		stats.ActiveTodos++
		if t.IsOverdue(today) {
			stats.OverdueTodos++
		}
		if t.IsDueOn(today) {
			stats.DueToday++
		}
		if t.IsScheduledAfter(today) {
			stats.ScheduledLater++
		}
		if t.Priority == task.HighPriority {
			stats.HighPriority++
		}
		if oldest == nil || t.CreatedAt.Before(*oldest) {
			created := t.CreatedAt
			oldest = &created
		}
	}

	candidates := task.FilterCandidates(tasks, today)
	stats.Candidates = len(candidates)
	stats.CandidateWeight = algorithm.ComputeTaskWeights(candidates, today).TotalWeight

	if stats.TotalTodos > 0 {
		stats.CompletionRate = float64(stats.CompletedTodos) / float64(stats.TotalTodos) * 100
	}
	if oldest != nil {
		days := -algorithm.DaysUntil(*oldest, today)
		stats.OldestActiveDays = &days
	}

	return stats
}

func (d *Dashboard) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tasks, err := d.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load todos for stats", "user_id", userID, "err", err)
		httputil.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, Compute(tasks, d.now().In(d.loc)), http.StatusOK)
}
