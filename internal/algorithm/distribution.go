package algorithm

import (
	"fmt"
	"math"
)

type Distribution struct {
	Base          float64   `json:"base"`
	Sum           float64   `json:"sum"`
	Terms         []float64 `json:"terms"`
	Probabilities []float64 `json:"probabilities"`
}

// ComputeCategoryDistribution builds the category distribution for a total
// weight: term[i] = base^(i+1) and probability[i] = term[i]/sum*100.
// Range checks belong to Config.Validate; this only refuses inputs that
// would produce NaN or Inf.
func ComputeCategoryDistribution(totalWeight float64, cfg Config) (*Distribution, error) {
	if cfg.NumCategories < 1 {
		return nil, fmt.Errorf("%w: num_categories must be positive, got %d", ErrInvalidConfig, cfg.NumCategories)
	}

	base := EffectiveBase(totalWeight, cfg)
	if !(base > 0) || math.IsInf(base, 0) {
		return nil, fmt.Errorf("%w: base must be a positive finite number, got %v", ErrInvalidConfig, base)
	}

	dist := &Distribution{
		Base:          base,
		Terms:         make([]float64, cfg.NumCategories),
		Probabilities: make([]float64, cfg.NumCategories),
	}

	for i := range dist.Terms {
		dist.Terms[i] = math.Pow(base, float64(i+1))
		dist.Sum += dist.Terms[i]
	}
	if math.IsInf(dist.Sum, 0) || dist.Sum == 0 {
		return nil, fmt.Errorf("%w: category terms overflow for base %v", ErrInvalidConfig, base)
	}

	for i, term := range dist.Terms {
		dist.Probabilities[i] = term / dist.Sum * 100
	}

	return dist, nil
}

func (d *Distribution) NumCategories() int {
	return len(d.Terms)
}

// Truncate3 floors x to three decimal places, the precision results are
// stored with.
func Truncate3(x float64) float64 {
	return math.Floor(x*1000) / 1000
}
