package algorithm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func TestEffectiveBase(t *testing.T) {
	tests := []struct {
		name        string
		totalWeight float64
		cfg         Config
		expected    float64
	}{
		{name: "default base without weight", totalWeight: 0, cfg: DefaultConfig(), expected: DefaultBase},
		{name: "total weight as base", totalWeight: 4.5, cfg: DefaultConfig(), expected: 4.5},
		{name: "half weight", totalWeight: 4.5, cfg: Config{NumCategories: 3, UseHalfWeight: true}, expected: 2.25},
		{name: "half of default base", totalWeight: 0, cfg: Config{NumCategories: 3, UseHalfWeight: true}, expected: DefaultBase / 2},
		{name: "custom base wins", totalWeight: 4.5, cfg: Config{NumCategories: 3, UseCustomBase: true, CustomBase: 7}, expected: 7},
		{name: "custom base ignores half weight", totalWeight: 4.5, cfg: Config{NumCategories: 3, UseCustomBase: true, CustomBase: 7, UseHalfWeight: true}, expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EffectiveBase(tt.totalWeight, tt.cfg), 1e-12)
		})
	}
}

func TestComputeCategoryDistribution_DefaultBase(t *testing.T) {
	dist, err := ComputeCategoryDistribution(0, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, DefaultBase, dist.Base)
	require.Len(t, dist.Probabilities, 3)
	assert.InDelta(t, 2.93+8.5849+25.153757, dist.Sum, 1e-6)
	assert.InDelta(t, 7.99, dist.Probabilities[0], 0.01)
	assert.InDelta(t, 23.41, dist.Probabilities[1], 0.01)
	assert.InDelta(t, 68.60, dist.Probabilities[2], 0.01)
	assert.InDelta(t, 100.0, sum(dist.Probabilities), 1e-6)
	assert.Equal(t, 3, dist.NumCategories())
}

func TestComputeCategoryDistribution_SumsToHundred(t *testing.T) {
	for n := MinNumCategories; n <= MaxNumCategories; n++ {
		for _, base := range []float64{MinCustomBase, 0.5, 1, DefaultBase, 7.5, MaxCustomBase} {
			cfg := Config{NumCategories: n, UseCustomBase: true, CustomBase: base}

			dist, err := ComputeCategoryDistribution(0, cfg)
			require.NoError(t, err)
			assert.InDelta(t, 100.0, sum(dist.Probabilities), 1e-6, "n=%d base=%v", n, base)
			assert.InDelta(t, dist.Sum, sum(dist.Terms), 1e-9*dist.Sum)
		}
	}
}

func TestComputeCategoryDistribution_Shape(t *testing.T) {
	t.Run("increasing for base above one", func(t *testing.T) {
		dist, err := ComputeCategoryDistribution(6.2, Config{NumCategories: 6})
		require.NoError(t, err)

		for i := 1; i < len(dist.Probabilities); i++ {
			assert.Greater(t, dist.Probabilities[i], dist.Probabilities[i-1])
		}
	})

	t.Run("decreasing for base below one", func(t *testing.T) {
		dist, err := ComputeCategoryDistribution(0, Config{NumCategories: 4, UseCustomBase: true, CustomBase: 0.5})
		require.NoError(t, err)

		for i := 1; i < len(dist.Probabilities); i++ {
			assert.Less(t, dist.Probabilities[i], dist.Probabilities[i-1])
		}
	})

	t.Run("uniform for base one", func(t *testing.T) {
		dist, err := ComputeCategoryDistribution(0, Config{NumCategories: 4, UseCustomBase: true, CustomBase: 1})
		require.NoError(t, err)

		for _, p := range dist.Probabilities {
			assert.InDelta(t, 25.0, p, 1e-9)
		}
	})

	t.Run("single category is certain", func(t *testing.T) {
		dist, err := ComputeCategoryDistribution(3, Config{NumCategories: 1})
		require.NoError(t, err)

		assert.Equal(t, []float64{100}, dist.Probabilities)
	})
}

func TestComputeCategoryDistribution_RejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero categories", cfg: Config{NumCategories: 0}},
		{name: "negative categories", cfg: Config{NumCategories: -2}},
		{name: "zero custom base", cfg: Config{NumCategories: 3, UseCustomBase: true, CustomBase: 0}},
		{name: "negative custom base", cfg: Config{NumCategories: 3, UseCustomBase: true, CustomBase: -1}},
		{name: "NaN custom base", cfg: Config{NumCategories: 3, UseCustomBase: true, CustomBase: math.NaN()}},
		{name: "infinite custom base", cfg: Config{NumCategories: 3, UseCustomBase: true, CustomBase: math.Inf(1)}},
		{name: "overflowing terms", cfg: Config{NumCategories: 400, UseCustomBase: true, CustomBase: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, err := ComputeCategoryDistribution(2, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, dist)
		})
	}
}

func TestComputeCategoryDistribution_Idempotent(t *testing.T) {
	cfg := Config{NumCategories: 7, UseHalfWeight: true}

	first, err := ComputeCategoryDistribution(5.3, cfg)
	require.NoError(t, err)
	second, err := ComputeCategoryDistribution(5.3, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{NumCategories: 2, CustomBase: 0.1}.Validate())
	assert.NoError(t, Config{NumCategories: 10, CustomBase: 20}.Validate())

	assert.ErrorIs(t, Config{NumCategories: 1, CustomBase: 2}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{NumCategories: 11, CustomBase: 2}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{NumCategories: 3, CustomBase: 0.05}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{NumCategories: 3, CustomBase: 20.5}.Validate(), ErrInvalidConfig)
}

func TestTruncate3(t *testing.T) {
	assert.Equal(t, 36.668, Truncate3(36.668657))
	assert.Equal(t, 1.0, Truncate3(1.0009))
	assert.Equal(t, 0.0, Truncate3(0.0004))
}
