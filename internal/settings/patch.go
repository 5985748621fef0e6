package settings

import (
	"errors"
	"fmt"
	"time"

	"github.com/nadmax/yantodo/internal/algorithm"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Patch carries the user-editable fields. Result fields are written through
// RecordRecommendation and RecordResults only.
type Patch struct {
	Filter                  *string `json:"filter"`
	SortBy                  *string `json:"sort_by"`
	PriorityFirst           *bool   `json:"priority_first"`
	AdvancedRecommendations *bool   `json:"advanced_recommendations"`
	StatsForNerds           *bool   `json:"stats_for_nerds"`
	HideScheduledTasks      *bool   `json:"hide_scheduled_tasks"`

	NumCategories *int     `json:"num_categories"`
	UseCustomBase *bool    `json:"use_custom_base"`
	CustomBase    *float64 `json:"custom_base"`
	UseHalfWeight *bool    `json:"use_half_weight"`
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply validates p and writes it onto s. s is left unmodified when an
// error is returned.
func (p Patch) Apply(s *Settings, now time.Time) error {
	updated := *s

	if p.Filter != nil {
		f := Filter(*p.Filter)
		switch f {
		case FilterAll, FilterActive, FilterCompleted, FilterOverdue:
			updated.Filter = f
		default:
			return fmt.Errorf("%w: unknown filter %q", ErrInvalidSettings, *p.Filter)
		}
	}

	if p.SortBy != nil {
		sb := SortBy(*p.SortBy)
		switch sb {
		case SortByCreated, SortByDueDate:
			updated.SortBy = sb
		default:
			return fmt.Errorf("%w: unknown sort_by %q", ErrInvalidSettings, *p.SortBy)
		}
	}

	if p.PriorityFirst != nil {
		updated.PriorityFirst = *p.PriorityFirst
	}
	if p.AdvancedRecommendations != nil {
		updated.AdvancedRecommendations = *p.AdvancedRecommendations
	}
	if p.StatsForNerds != nil {
		updated.StatsForNerds = *p.StatsForNerds
	}
	if p.HideScheduledTasks != nil {
		updated.HideScheduledTasks = *p.HideScheduledTasks
	}

	if p.NumCategories != nil {
		updated.NumCategories = *p.NumCategories
	}
	if p.UseCustomBase != nil {
		updated.UseCustomBase = *p.UseCustomBase
	}
	if p.CustomBase != nil {
		updated.CustomBase = *p.CustomBase
	}
	if p.UseHalfWeight != nil {
		updated.UseHalfWeight = *p.UseHalfWeight
	}

	if err := updated.AlgorithmConfig().Validate(); err != nil {
		if errors.Is(err, algorithm.ErrInvalidConfig) {
			return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		return err
	}

	updated.UpdatedAt = now
	*s = updated
	return nil
}
