// Package recommend runs the YanAlgorithm against a user's stored todos and
// settings: weighted task recommendations, category draws and snapshot
// status checks.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/nadmax/yantodo/internal/algorithm"
	"github.com/nadmax/yantodo/internal/metrics"
	"github.com/nadmax/yantodo/internal/repository"
	"github.com/nadmax/yantodo/internal/settings"
	"github.com/nadmax/yantodo/internal/task"
)

const NoCandidatesMessage = "No active tasks available for recommendation"

var (
	ErrInvalidTodo    = errors.New("invalid todo id")
	ErrInvalidResults = errors.New("missing or invalid required fields")
)

type Service struct {
	tasks    repository.TaskRepository
	settings repository.SettingsRepository
	now      func() time.Time
	rnd      algorithm.RandomSource
	loc      *time.Location
}

func NewService(tasks repository.TaskRepository, settingsRepo repository.SettingsRepository) *Service {
	return &Service{
		tasks:    tasks,
		settings: settingsRepo,
		now:      time.Now,
		rnd:      algorithm.RandomFunc(rand.Float64),
		loc:      time.Local,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) SetRandomSource(rnd algorithm.RandomSource) {
	s.rnd = rnd
}

// SetLocation sets the timezone that decides which calendar day "today" is.
func (s *Service) SetLocation(loc *time.Location) {
	s.loc = loc
}

// Today returns the current time in the service location.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}

type Recommendation struct {
	Task            *task.Task           `json:"recommendation"`
	Message         string               `json:"message,omitempty"`
	Method          algorithm.DrawMethod `json:"method,omitempty"`
	TotalWeight     float64              `json:"total_weight"`
	EffectiveWeight float64              `json:"effective_weight"`
	RandomValue     float64              `json:"random_value"`
	TaskWeights     map[string]float64   `json:"task_weights,omitempty"`
	GeneratedAt     *time.Time           `json:"generated_at,omitempty"`
}

// GenerateRecommendation draws one of the user's candidate todos with
// probability proportional to its urgency weight and records it as the
// last recommendation. A user with no candidates gets a nil Task and a
// message instead of an error.
func (s *Service) GenerateRecommendation(ctx context.Context, userID string) (*Recommendation, error) {
	today := s.Today()

	candidates, err := s.candidates(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		metrics.RecordEmptyRecommendation()
		return &Recommendation{Message: NoCandidatesMessage}, nil
	}

	current, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	weights := algorithm.ComputeTaskWeights(candidates, today)
	draw, err := algorithm.DrawWeightedTask(candidates, weights, current.UseHalfWeight, s.rnd)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	if _, err := s.settings.UpdateSettings(ctx, userID, func(st *settings.Settings) error {
		st.RecordRecommendation(draw.TaskID, generatedAt)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to save recommendation: %w", err)
	}

	metrics.RecordRecommendation(string(draw.Method), weights.TotalWeight)

	rec := &Recommendation{
		Task:        findTask(candidates, draw.TaskID),
		Method:      draw.Method,
		GeneratedAt: &generatedAt,
	}
	if draw.Method == algorithm.WeightedRandom {
		rec.TotalWeight = weights.TotalWeight
		rec.EffectiveWeight = draw.EffectiveWeight
		rec.RandomValue = draw.RandomValue
		rec.TaskWeights = weights.PerTaskWeight
	}

	return rec, nil
}

type NumberResult struct {
	RandomNumber         float64            `json:"random_number"`
	SelectedCategory     int                `json:"selected_category"`
	GeneratedSum         float64            `json:"generated_sum"`
	GeneratedRandomValue float64            `json:"generated_random_value"`
	GeneratedAt          time.Time          `json:"generated_at"`
	Base                 float64            `json:"base"`
	Probabilities        []float64          `json:"probabilities"`
	SettingsUsed         algorithm.Snapshot `json:"settings_used"`
}

// GenerateNumber draws a category from the exponential distribution built
// on the user's current total weight and stores the outcome with a
// snapshot of the configuration that produced it.
func (s *Service) GenerateNumber(ctx context.Context, userID string) (*NumberResult, error) {
	today := s.Today()

	current, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	candidates, err := s.candidates(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	cfg := current.AlgorithmConfig()
	weights := algorithm.ComputeTaskWeights(candidates, today)

	dist, err := algorithm.ComputeCategoryDistribution(weights.TotalWeight, cfg)
	if err != nil {
		return nil, err
	}

	draw := algorithm.DrawWeightedCategory(dist, s.rnd)
	snapshot := algorithm.NewSnapshot(cfg, weights.TotalWeight)
	generatedAt := s.now()

	result := &NumberResult{
		RandomNumber:         algorithm.Truncate3(draw.RandomValue),
		SelectedCategory:     draw.Category,
		GeneratedSum:         algorithm.Truncate3(dist.Sum),
		GeneratedRandomValue: algorithm.Truncate3(draw.RandomValue),
		GeneratedAt:          generatedAt,
		Base:                 dist.Base,
		Probabilities:        dist.Probabilities,
		SettingsUsed:         snapshot,
	}

	if _, err := s.settings.UpdateSettings(ctx, userID, func(st *settings.Settings) error {
		st.RecordResults(result.toAlgorithmResults())
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to save algorithm results: %w", err)
	}

	metrics.RecordCategorySelected(draw.Category)

	return result, nil
}

func (r *NumberResult) toAlgorithmResults() settings.AlgorithmResults {
	snapshot := r.SettingsUsed
	return settings.AlgorithmResults{
		RandomNumber:         r.RandomNumber,
		SelectedCategory:     r.SelectedCategory,
		GeneratedSum:         r.GeneratedSum,
		GeneratedRandomValue: r.GeneratedRandomValue,
		GeneratedAt:          r.GeneratedAt,
		SettingsSnapshot:     &snapshot,
	}
}

type Status struct {
	Config          algorithm.Config    `json:"config"`
	CandidateCount  int                 `json:"candidate_count"`
	TotalWeight     float64             `json:"total_weight"`
	EffectiveBase   float64             `json:"effective_base"`
	Probabilities   []float64           `json:"probabilities"`
	Snapshot        *algorithm.Snapshot `json:"snapshot"`
	Stale           bool                `json:"stale"`
	LastGeneratedAt *time.Time          `json:"last_generated_at,omitempty"`
}

// AlgorithmStatus reports the live weights and distribution and whether the
// last stored category draw still matches them.
func (s *Service) AlgorithmStatus(ctx context.Context, userID string) (*Status, error) {
	today := s.Today()

	current, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	candidates, err := s.candidates(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	cfg := current.AlgorithmConfig()
	weights := algorithm.ComputeTaskWeights(candidates, today)

	dist, err := algorithm.ComputeCategoryDistribution(weights.TotalWeight, cfg)
	if err != nil {
		return nil, err
	}

	stale := algorithm.IsSnapshotStale(current.LastSettingsSnapshot, cfg, weights.TotalWeight)
	if stale && current.LastSettingsSnapshot != nil {
		metrics.RecordStaleSnapshot()
	}

	return &Status{
		Config:          cfg,
		CandidateCount:  len(candidates),
		TotalWeight:     weights.TotalWeight,
		EffectiveBase:   dist.Base,
		Probabilities:   dist.Probabilities,
		Snapshot:        current.LastSettingsSnapshot,
		Stale:           stale,
		LastGeneratedAt: current.LastGeneratedAt,
	}, nil
}

// SaveRecommendation stores a recommendation made elsewhere. The todo must
// belong to the user. A zero at means now.
func (s *Service) SaveRecommendation(ctx context.Context, userID, todoID string, at time.Time) (*settings.Settings, error) {
	if todoID == "" {
		return nil, fmt.Errorf("%w: todo id is required", ErrInvalidTodo)
	}

	if _, err := s.tasks.GetTask(ctx, userID, todoID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrInvalidTodo
		}
		return nil, err
	}

	if at.IsZero() {
		at = s.now()
	}

	return s.settings.UpdateSettings(ctx, userID, func(st *settings.Settings) error {
		st.RecordRecommendation(todoID, at)
		return nil
	})
}

// SaveAlgorithmResults stores a category draw made elsewhere.
func (s *Service) SaveAlgorithmResults(ctx context.Context, userID string, results settings.AlgorithmResults) (*settings.Settings, error) {
	if results.GeneratedAt.IsZero() || results.SettingsSnapshot == nil {
		return nil, ErrInvalidResults
	}

	n := results.SettingsSnapshot.NumCategories
	if n < 1 || results.SelectedCategory < 1 || results.SelectedCategory > n {
		return nil, fmt.Errorf("%w: selected category %d outside 1..%d", ErrInvalidResults, results.SelectedCategory, n)
	}

	return s.settings.UpdateSettings(ctx, userID, func(st *settings.Settings) error {
		st.RecordResults(results)
		return nil
	})
}

func (s *Service) candidates(ctx context.Context, userID string, today time.Time) ([]*task.Task, error) {
	active, err := s.tasks.ListActiveTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}

	return task.FilterCandidates(active, today), nil
}

func findTask(tasks []*task.Task, id string) *task.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}

	return nil
}
