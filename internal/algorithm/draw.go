package algorithm

import (
	"math"

	"github.com/nadmax/yantodo/internal/task"
)

type DrawMethod string

const (
	WeightedRandom DrawMethod = "weighted_random"
	RandomFallback DrawMethod = "random_fallback"
)

// RandomSource yields uniform values in [0, 1). *rand.Rand from math/rand
// and math/rand/v2 both satisfy it.
type RandomSource interface {
	Float64() float64
}

type RandomFunc func() float64

func (f RandomFunc) Float64() float64 {
	return f()
}

type TaskDraw struct {
	TaskID          string     `json:"task_id"`
	Method          DrawMethod `json:"method"`
	RandomValue     float64    `json:"random_value"`
	EffectiveWeight float64    `json:"effective_weight"`
}

type CategoryDraw struct {
	Category    int     `json:"category"`
	RandomValue float64 `json:"random_value"`
}

// DrawWeightedTask picks one candidate with probability proportional to its
// weight. With no positive total weight the pick is uniform. Candidates are
// walked in the given order; a draw that falls past the last cumulative
// boundary through rounding returns the first candidate.
func DrawWeightedTask(candidates []*task.Task, weights WeightResult, useHalfWeight bool, rnd RandomSource) (TaskDraw, error) {
	if len(candidates) == 0 {
		return TaskDraw{}, ErrEmptyCandidateSet
	}

	if weights.TotalWeight <= 0 {
		r := rnd.Float64()
		idx := int(math.Floor(r * float64(len(candidates))))
		if idx >= len(candidates) {
			idx = len(candidates) - 1
		}

		return TaskDraw{
			TaskID:      candidates[idx].ID,
			Method:      RandomFallback,
			RandomValue: r,
		}, nil
	}

	effective := weights.TotalWeight
	if useHalfWeight {
		effective /= 2
	}

	r := rnd.Float64() * effective
	draw := TaskDraw{
		TaskID:          candidates[0].ID,
		Method:          WeightedRandom,
		RandomValue:     r,
		EffectiveWeight: effective,
	}

	cumulative := 0.0
	for _, c := range candidates {
		w := weights.PerTaskWeight[c.ID]
		if useHalfWeight {
			w /= 2
		}
		cumulative += w
		if r < cumulative {
			draw.TaskID = c.ID
			break
		}
	}

	return draw, nil
}

// DrawWeightedCategory picks a 1-based category with probability
// proportional to its term. Rounding past the last boundary yields 1.
func DrawWeightedCategory(dist *Distribution, rnd RandomSource) CategoryDraw {
	r := rnd.Float64() * dist.Sum
	draw := CategoryDraw{Category: 1, RandomValue: r}

	cumulative := 0.0
	for i, term := range dist.Terms {
		cumulative += term
		if r < cumulative {
			draw.Category = i + 1
			break
		}
	}

	return draw
}
