package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTask = errors.New("invalid task")

// Nullable distinguishes an absent JSON field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	n.Value = &v
	return nil
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Patch is a partial update. Absent fields are left untouched and explicit
// nulls clear optional fields.
type Patch struct {
	Title           *string          `json:"title"`
	Description     Nullable[string] `json:"description"`
	Priority        *string          `json:"priority"`
	Completed       *bool            `json:"completed"`
	DueDate         Nullable[string] `json:"due_date"`
	ConstantDueDays Nullable[int]    `json:"constant_due_days"`
	ScheduledDate   Nullable[string] `json:"scheduled_date"`
}

// Apply validates the patch and writes it onto t. Date-only values are
// interpreted in loc. t is left unmodified when an error is returned.
func (p Patch) Apply(t *Task, loc *time.Location, now time.Time) error {
	updated := *t

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title is required", ErrInvalidTask)
		}
		updated.Title = title
	}

	if p.Description.Set {
		updated.Description = nil
		if p.Description.Value != nil && *p.Description.Value != "" {
			desc := *p.Description.Value
			updated.Description = &desc
		}
	}

	if p.Priority != nil {
		priority, err := ParsePriority(*p.Priority)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		updated.Priority = priority
	}

	if p.Completed != nil {
		updated.Completed = *p.Completed
	}

	dueSet := p.DueDate.Set && p.DueDate.Value != nil
	constantSet := p.ConstantDueDays.Set && p.ConstantDueDays.Value != nil
	if dueSet && constantSet {
		return fmt.Errorf("%w: due_date and constant_due_days are mutually exclusive", ErrInvalidTask)
	}

	if p.DueDate.Set {
		due, err := parseOptionalDate(p.DueDate.Value, loc)
		if err != nil {
			return fmt.Errorf("%w: due_date: %v", ErrInvalidTask, err)
		}
		updated.DueDate = due
		if dueSet {
			updated.ConstantDueDays = nil
		}
	}

	if p.ConstantDueDays.Set {
		updated.ConstantDueDays = nil
		if constantSet {
			days := *p.ConstantDueDays.Value
			if days < 0 {
				return fmt.Errorf("%w: constant_due_days must not be negative", ErrInvalidTask)
			}
			updated.ConstantDueDays = &days
			updated.DueDate = nil
		}
	}

	if p.ScheduledDate.Set {
		scheduled, err := parseOptionalDate(p.ScheduledDate.Value, loc)
		if err != nil {
			return fmt.Errorf("%w: scheduled_date: %v", ErrInvalidTask, err)
		}
		updated.ScheduledDate = scheduled
	}

	updated.UpdatedAt = now
	*t = updated
	return nil
}

func parseOptionalDate(s *string, loc *time.Location) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}

	d, err := ParseDate(*s, loc)
	if err != nil {
		return nil, err
	}

	return &d, nil
}
