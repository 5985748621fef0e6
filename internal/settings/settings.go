// Package settings holds per-user preferences, the YanAlgorithm
// configuration and the last generated results.
package settings

import (
	"encoding/json"
	"time"

	"github.com/nadmax/yantodo/internal/algorithm"
)

type (
	Filter string
	SortBy string
)

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

const (
	SortByCreated SortBy = "created"
	SortByDueDate SortBy = "dueDate"
)

type Settings struct {
	UserID string `json:"user_id"`

	Filter                  Filter `json:"filter"`
	SortBy                  SortBy `json:"sort_by"`
	PriorityFirst           bool   `json:"priority_first"`
	AdvancedRecommendations bool   `json:"advanced_recommendations"`
	StatsForNerds           bool   `json:"stats_for_nerds"`
	HideScheduledTasks      bool   `json:"hide_scheduled_tasks"`

	NumCategories int     `json:"num_categories"`
	UseCustomBase bool    `json:"use_custom_base"`
	CustomBase    float64 `json:"custom_base"`
	UseHalfWeight bool    `json:"use_half_weight"`

	LastRecommendedTodoID  *string    `json:"last_recommended_todo_id,omitempty"`
	LastRecommendationTime *time.Time `json:"last_recommendation_time,omitempty"`

	LastRandomNumber         *float64            `json:"last_random_number,omitempty"`
	LastSelectedCategory     *int                `json:"last_selected_category,omitempty"`
	LastGeneratedSum         *float64            `json:"last_generated_sum,omitempty"`
	LastGeneratedRandomValue *float64            `json:"last_generated_random_value,omitempty"`
	LastGeneratedAt          *time.Time          `json:"last_generated_at,omitempty"`
	LastSettingsSnapshot     *algorithm.Snapshot `json:"last_settings_snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AlgorithmResults is a completed category draw as persisted on the user's
// settings.
type AlgorithmResults struct {
	RandomNumber         float64             `json:"random_number"`
	SelectedCategory     int                 `json:"selected_category"`
	GeneratedSum         float64             `json:"generated_sum"`
	GeneratedRandomValue float64             `json:"generated_random_value"`
	GeneratedAt          time.Time           `json:"generated_at"`
	SettingsSnapshot     *algorithm.Snapshot `json:"settings_snapshot"`
}

func Default(userID string, now time.Time) *Settings {
	cfg := algorithm.DefaultConfig()
	return &Settings{
		UserID:        userID,
		Filter:        FilterAll,
		SortBy:        SortByCreated,
		NumCategories: cfg.NumCategories,
		UseCustomBase: cfg.UseCustomBase,
		CustomBase:    cfg.CustomBase,
		UseHalfWeight: cfg.UseHalfWeight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *Settings) AlgorithmConfig() algorithm.Config {
	return algorithm.Config{
		NumCategories: s.NumCategories,
		UseCustomBase: s.UseCustomBase,
		CustomBase:    s.CustomBase,
		UseHalfWeight: s.UseHalfWeight,
	}
}

func (s *Settings) RecordRecommendation(todoID string, at time.Time) {
	id := todoID
	s.LastRecommendedTodoID = &id
	s.LastRecommendationTime = &at
	s.UpdatedAt = at
}

func (s *Settings) RecordResults(r AlgorithmResults) {
	s.LastRandomNumber = &r.RandomNumber
	s.LastSelectedCategory = &r.SelectedCategory
	s.LastGeneratedSum = &r.GeneratedSum
	s.LastGeneratedRandomValue = &r.GeneratedRandomValue
	s.LastGeneratedAt = &r.GeneratedAt
	s.LastSettingsSnapshot = r.SettingsSnapshot
	s.UpdatedAt = r.GeneratedAt
}

func (s *Settings) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func SettingsFromJSON(data string) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}

	return &s, nil
}
