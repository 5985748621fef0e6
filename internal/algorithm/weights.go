package algorithm

import (
	"time"

	"github.com/nadmax/yantodo/internal/task"
)

const (
	noDueDateDays          = 7
	highPriorityMultiplier = 2
)

type WeightResult struct {
	PerTaskWeight map[string]float64 `json:"per_task_weight"`
	TotalWeight   float64            `json:"total_weight"`
}

// ComputeTaskWeights weights every task in the list. Callers pass only
// candidates (see task.FilterCandidates); the list is not filtered here.
func ComputeTaskWeights(tasks []*task.Task, today time.Time) WeightResult {
	result := WeightResult{
		PerTaskWeight: make(map[string]float64, len(tasks)),
	}

	for _, t := range tasks {
		w := TaskWeight(t, today)
		result.PerTaskWeight[t.ID] = w
		result.TotalWeight += w
	}

	return result
}

// TaskWeight is 1/effectiveDays scaled by priority. Tasks due in the future
// use the day count directly; tasks due today or overdue use
// 1/(overdueDays+2), so the weight keeps growing the longer a task is late.
// Tasks without a due date are treated as due in a week.
func TaskWeight(t *task.Task, today time.Time) float64 {
	weight := 1.0 / noDueDateDays

	if t.DueDate != nil {
		diff := DaysUntil(*t.DueDate, today)

		var effectiveDays float64
		if diff > 0 {
			effectiveDays = float64(diff)
		} else {
			effectiveDays = 1 / float64(-diff+2)
		}
		weight = 1 / effectiveDays
	}

	if t.Priority == task.HighPriority {
		weight *= highPriorityMultiplier
	}

	return weight
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the whole number of calendar days from today to due in
// today's location; negative when due is in the past. Both days are UTC
// midnights, so the difference in Unix seconds is an exact multiple of a day
// and does not overflow for dates centuries away.
func DaysUntil(due, today time.Time) int {
	loc := today.Location()
	diff := task.Day(due, loc).Unix() - task.Day(today, loc).Unix()

	return int(diff / secondsPerDay)
}
