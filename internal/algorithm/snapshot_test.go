package algorithm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshot(t *testing.T) {
	cfg := Config{NumCategories: 5, UseHalfWeight: true, CustomBase: 3.3}

	s := NewSnapshot(cfg, 8)

	assert.Equal(t, 5, s.NumCategories)
	assert.True(t, s.UseHalfWeight)
	assert.False(t, s.UseCustomBase)
	assert.Equal(t, 3.3, s.CustomBase)
	assert.Equal(t, 4.0, s.EffectiveBase)
	assert.Equal(t, 8.0, s.TotalWeight)
}

func TestIsSnapshotStale(t *testing.T) {
	live := Config{NumCategories: 4, UseCustomBase: false, CustomBase: 2.93, UseHalfWeight: false}
	liveWeight := 3.5
	fresh := NewSnapshot(live, liveWeight)

	t.Run("fresh snapshot is current", func(t *testing.T) {
		assert.False(t, IsSnapshotStale(&fresh, live, liveWeight))
	})

	t.Run("missing snapshot is stale", func(t *testing.T) {
		assert.True(t, IsSnapshotStale(nil, live, liveWeight))
	})

	t.Run("tiny weight drift is tolerated", func(t *testing.T) {
		assert.False(t, IsSnapshotStale(&fresh, live, liveWeight+0.0005))
	})

	t.Run("weight drift beyond tolerance", func(t *testing.T) {
		assert.True(t, IsSnapshotStale(&fresh, live, liveWeight+0.01))
	})

	changes := map[string]func(c *Config){
		"num categories":  func(c *Config) { c.NumCategories = 5 },
		"use custom base": func(c *Config) { c.UseCustomBase = true },
		"use half weight": func(c *Config) { c.UseHalfWeight = true },
		"custom base":     func(c *Config) { c.CustomBase = 3 },
	}

	for name, change := range changes {
		t.Run("changed "+name, func(t *testing.T) {
			changed := live
			change(&changed)
			assert.True(t, IsSnapshotStale(&fresh, changed, liveWeight))
		})
	}

	t.Run("custom base ignores weight changes", func(t *testing.T) {
		custom := Config{NumCategories: 3, UseCustomBase: true, CustomBase: 6}
		snap := NewSnapshot(custom, 1)

		assert.False(t, IsSnapshotStale(&snap, custom, 42))
	})
}
