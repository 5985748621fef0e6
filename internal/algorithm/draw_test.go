package algorithm

import (
	"math/rand/v2"
	"testing"

	"github.com/nadmax/yantodo/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trials = 100_000

// sequence replays fixed values and then repeats the last one.
type sequence struct {
	values []float64
	next   int
}

func (s *sequence) Float64() float64 {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}

func fixed(v float64) RandomSource {
	return RandomFunc(func() float64 { return v })
}

func weightedFixture() ([]*task.Task, WeightResult) {
	candidates := []*task.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	weights := WeightResult{
		PerTaskWeight: map[string]float64{"a": 1, "b": 2, "c": 3},
		TotalWeight:   6,
	}
	return candidates, weights
}

func TestDrawWeightedTask_WalksCumulativeWeights(t *testing.T) {
	candidates, weights := weightedFixture()

	tests := []struct {
		name     string
		r        float64
		half     bool
		expected string
	}{
		{name: "first bucket", r: 0.1, expected: "a"},
		{name: "second bucket", r: 0.4, expected: "b"},
		{name: "boundary goes to next bucket", r: 0.5, expected: "c"},
		{name: "last bucket", r: 0.9, expected: "c"},
		{name: "half weight keeps proportions", r: 0.4, half: true, expected: "b"},
		{name: "zero draw", r: 0, expected: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draw, err := DrawWeightedTask(candidates, weights, tt.half, fixed(tt.r))
			require.NoError(t, err)

			assert.Equal(t, tt.expected, draw.TaskID)
			assert.Equal(t, WeightedRandom, draw.Method)
		})
	}
}

func TestDrawWeightedTask_ReportsEffectiveWeight(t *testing.T) {
	candidates, weights := weightedFixture()

	draw, err := DrawWeightedTask(candidates, weights, true, fixed(0.5))
	require.NoError(t, err)

	assert.Equal(t, 3.0, draw.EffectiveWeight)
	assert.Equal(t, 1.5, draw.RandomValue)
}

func TestDrawWeightedTask_RoundingMissFallsBackToFirst(t *testing.T) {
	candidates, weights := weightedFixture()
	weights.TotalWeight = 10

	draw, err := DrawWeightedTask(candidates, weights, false, fixed(0.95))
	require.NoError(t, err)

	assert.Equal(t, "a", draw.TaskID)
	assert.Equal(t, WeightedRandom, draw.Method)
}

func TestDrawWeightedTask_UniformFallback(t *testing.T) {
	candidates := []*task.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	weights := WeightResult{PerTaskWeight: map[string]float64{}}

	draw, err := DrawWeightedTask(candidates, weights, false, fixed(0.6))
	require.NoError(t, err)
	assert.Equal(t, "c", draw.TaskID)
	assert.Equal(t, RandomFallback, draw.Method)

	draw, err = DrawWeightedTask(candidates, weights, false, fixed(1.0))
	require.NoError(t, err)
	assert.Equal(t, "d", draw.TaskID)
}

func TestDrawWeightedTask_EmptyCandidates(t *testing.T) {
	_, err := DrawWeightedTask(nil, WeightResult{}, false, fixed(0.5))

	assert.ErrorIs(t, err, ErrEmptyCandidateSet)
}

func TestDrawWeightedTask_Converges(t *testing.T) {
	candidates := []*task.Task{
		newTask("overdue", task.HighPriority, dueIn(-2)),
		newTask("today", task.LowPriority, dueIn(0)),
		newTask("week", task.LowPriority, dueIn(7)),
		newTask("none", task.HighPriority, nil),
	}
	weights := ComputeTaskWeights(candidates, today)

	for _, half := range []bool{false, true} {
		rnd := rand.New(rand.NewPCG(42, 7))
		counts := make(map[string]int)

		for range trials {
			draw, err := DrawWeightedTask(candidates, weights, half, rnd)
			require.NoError(t, err)
			counts[draw.TaskID]++
		}

		for _, c := range candidates {
			expected := weights.PerTaskWeight[c.ID] / weights.TotalWeight
			observed := float64(counts[c.ID]) / trials
			assert.InDelta(t, expected, observed, 0.01, "task %s half=%v", c.ID, half)
		}
	}
}

func TestDrawWeightedCategory(t *testing.T) {
	dist, err := ComputeCategoryDistribution(0, Config{NumCategories: 3, UseCustomBase: true, CustomBase: 2})
	require.NoError(t, err)
	// terms 2, 4, 8; sum 14

	tests := []struct {
		r        float64
		expected int
	}{
		{r: 0, expected: 1},
		{r: 1.5 / 14, expected: 1},
		{r: 2.5 / 14, expected: 2},
		{r: 5.5 / 14, expected: 2},
		{r: 6.5 / 14, expected: 3},
		{r: 0.999, expected: 3},
	}

	for _, tt := range tests {
		draw := DrawWeightedCategory(dist, fixed(tt.r))
		assert.Equal(t, tt.expected, draw.Category, "r=%v", tt.r)
		assert.InDelta(t, tt.r*14, draw.RandomValue, 1e-12)
	}
}

func TestDrawWeightedCategory_RoundingMissFallsBackToFirst(t *testing.T) {
	dist := &Distribution{Base: 2, Sum: 20, Terms: []float64{2, 4, 8}}

	draw := DrawWeightedCategory(dist, fixed(0.9))

	assert.Equal(t, 1, draw.Category)
}

func TestDrawWeightedCategory_Converges(t *testing.T) {
	dist, err := ComputeCategoryDistribution(0, DefaultConfig())
	require.NoError(t, err)

	rnd := rand.New(rand.NewPCG(2026, 3))
	counts := make([]int, dist.NumCategories()+1)
	for range trials {
		counts[DrawWeightedCategory(dist, rnd).Category]++
	}

	assert.Zero(t, counts[0])
	for i, p := range dist.Probabilities {
		observed := float64(counts[i+1]) / trials * 100
		assert.InDelta(t, p, observed, 1.0, "category %d", i+1)
	}
}

func TestSequenceSource(t *testing.T) {
	candidates, weights := weightedFixture()
	src := &sequence{values: []float64{0.1, 0.9}}

	first, err := DrawWeightedTask(candidates, weights, false, src)
	require.NoError(t, err)
	second, err := DrawWeightedTask(candidates, weights, false, src)
	require.NoError(t, err)

	assert.Equal(t, "a", first.TaskID)
	assert.Equal(t, "c", second.TaskID)
}
