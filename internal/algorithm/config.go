// Package algorithm implements the YanAlgorithm weight engine: per-task
// urgency weights, the exponential category distribution derived from them,
// weighted random draws and snapshot staleness checks.
//
// Every function is pure apart from the injected RandomSource, so the
// package holds no state and is safe for concurrent use.
package algorithm

import (
	"errors"
	"fmt"
)

const (
	// DefaultBase is used whenever there is no weight signal.
	DefaultBase = 2.93

	DefaultNumCategories = 3
	MinNumCategories     = 2
	MaxNumCategories     = 10
	MinCustomBase        = 0.1
	MaxCustomBase        = 20.0

	// SnapshotBaseTolerance bounds the effective base drift a snapshot may
	// show and still count as current.
	SnapshotBaseTolerance = 0.001
)

var (
	ErrInvalidConfig     = errors.New("invalid algorithm config")
	ErrEmptyCandidateSet = errors.New("empty candidate set")
)

type Config struct {
	NumCategories int     `json:"num_categories"`
	UseCustomBase bool    `json:"use_custom_base"`
	CustomBase    float64 `json:"custom_base"`
	UseHalfWeight bool    `json:"use_half_weight"`
}

func DefaultConfig() Config {
	return Config{
		NumCategories: DefaultNumCategories,
		UseCustomBase: false,
		CustomBase:    DefaultBase,
		UseHalfWeight: false,
	}
}

// Validate checks the ranges accepted at the settings boundary.
func (c Config) Validate() error {
	if c.NumCategories < MinNumCategories || c.NumCategories > MaxNumCategories {
		return fmt.Errorf("%w: num_categories must be between %d and %d", ErrInvalidConfig, MinNumCategories, MaxNumCategories)
	}
	if !(c.CustomBase >= MinCustomBase && c.CustomBase <= MaxCustomBase) {
		return fmt.Errorf("%w: custom_base must be between %g and %g", ErrInvalidConfig, MinCustomBase, MaxCustomBase)
	}

	return nil
}

// EffectiveBase returns the exponentiation base for a total weight: the
// total itself (DefaultBase when zero), halved when UseHalfWeight is set,
// and replaced by CustomBase when UseCustomBase is set.
func EffectiveBase(totalWeight float64, cfg Config) float64 {
	calculated := totalWeight
	if calculated <= 0 {
		calculated = DefaultBase
	}
	if cfg.UseHalfWeight {
		calculated /= 2
	}
	if cfg.UseCustomBase {
		return cfg.CustomBase
	}

	return calculated
}
