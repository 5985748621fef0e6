package algorithm

import "math"

// Snapshot records the settings a category draw was generated with, so a
// later reader can tell whether the saved result still reflects them.
type Snapshot struct {
	NumCategories int     `json:"num_categories"`
	UseCustomBase bool    `json:"use_custom_base"`
	CustomBase    float64 `json:"custom_base"`
	UseHalfWeight bool    `json:"use_half_weight"`
	EffectiveBase float64 `json:"effective_base"`
	TotalWeight   float64 `json:"total_weight"`
}

func NewSnapshot(cfg Config, totalWeight float64) Snapshot {
	return Snapshot{
		NumCategories: cfg.NumCategories,
		UseCustomBase: cfg.UseCustomBase,
		CustomBase:    cfg.CustomBase,
		UseHalfWeight: cfg.UseHalfWeight,
		EffectiveBase: EffectiveBase(totalWeight, cfg),
		TotalWeight:   totalWeight,
	}
}

// IsSnapshotStale reports whether s no longer matches the live config and
// weight. A missing snapshot is always stale.
func IsSnapshotStale(s *Snapshot, live Config, liveTotalWeight float64) bool {
	if s == nil {
		return true
	}

	current := EffectiveBase(liveTotalWeight, live)

	return s.NumCategories != live.NumCategories ||
		s.UseCustomBase != live.UseCustomBase ||
		s.UseHalfWeight != live.UseHalfWeight ||
		s.CustomBase != live.CustomBase ||
		math.Abs(s.EffectiveBase-current) >= SnapshotBaseTolerance
}
