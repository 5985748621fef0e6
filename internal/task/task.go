// Package task defines the todo domain model shared by the repositories, the
// recommendation engine and the HTTP layer. It contains priority definitions,
// day-granular date helpers, candidate filtering and partial updates.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	TaskPriority string
	Task         struct {
		ID              string       `json:"id"`
		UserID          string       `json:"user_id"`
		Title           string       `json:"title"`
		Description     *string      `json:"description,omitempty"`
		Priority        TaskPriority `json:"priority"`
		Completed       bool         `json:"completed"`
		DueDate         *time.Time   `json:"due_date,omitempty"`
		ConstantDueDays *int         `json:"constant_due_days,omitempty"`
		ScheduledDate   *time.Time   `json:"scheduled_date,omitempty"`
		CreatedAt       time.Time    `json:"created_at"`
		UpdatedAt       time.Time    `json:"updated_at"`
	}
)

const (
	LowPriority  TaskPriority = "low"
	HighPriority TaskPriority = "high"

	// legacyMediumPriority is still present in rows written before the
	// priority set was reduced to two values.
	legacyMediumPriority = "medium"
)

func NewTask(userID, title string, priority TaskPriority) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ParsePriority normalizes stored or submitted priority values. An empty
// value and the retired "medium" level both map to LowPriority.
func ParsePriority(s string) (TaskPriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LowPriority), legacyMediumPriority:
		return LowPriority, nil
	case string(HighPriority):
		return HighPriority, nil
	default:
		return "", fmt.Errorf("invalid priority %q", s)
	}
}

func (p TaskPriority) String() string {
	return string(p)
}

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		*p = LowPriority
		return nil
	}

	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// IsCandidate reports whether the task may be weighted and recommended on
// the given day: it must be open and not scheduled for a later day.
func (t *Task) IsCandidate(today time.Time) bool {
	if t.Completed {
		return false
	}
	if t.ScheduledDate != nil {
		return !Day(*t.ScheduledDate, today.Location()).After(Day(today, today.Location()))
	}

	return true
}

func (t *Task) IsOverdue(today time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}

	return Day(*t.DueDate, today.Location()).Before(Day(today, today.Location()))
}

func (t *Task) IsDueOn(today time.Time) bool {
	if t.DueDate == nil {
		return false
	}

	return Day(*t.DueDate, today.Location()).Equal(Day(today, today.Location()))
}

func (t *Task) IsScheduledAfter(today time.Time) bool {
	if t.ScheduledDate == nil {
		return false
	}

	return Day(*t.ScheduledDate, today.Location()).After(Day(today, today.Location()))
}

// FilterCandidates keeps the tasks eligible on the given day, preserving order.
func FilterCandidates(tasks []*Task, today time.Time) []*Task {
	candidates := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsCandidate(today) {
			candidates = append(candidates, t)
		}
	}

	return candidates
}
