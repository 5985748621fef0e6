package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nadmax/yantodo/internal/algorithm"
	"github.com/nadmax/yantodo/internal/httputil"
	"github.com/nadmax/yantodo/internal/metrics"
	"github.com/nadmax/yantodo/internal/recommend"
	"github.com/nadmax/yantodo/internal/settings"
)

type SaveRecommendationRequest struct {
	LastRecommendedTodoID  string     `json:"last_recommended_todo_id"`
	LastRecommendationTime *time.Time `json:"last_recommendation_time"`
}

type SaveRecommendationResponse struct {
	Success  bool               `json:"success"`
	Settings *settings.Settings `json:"settings"`
}

// SaveAlgorithmResultsRequest uses pointers so that missing numbers can be
// told apart from zeros.
type SaveAlgorithmResultsRequest struct {
	RandomNumber         *float64            `json:"random_number"`
	SelectedCategory     *int                `json:"selected_category"`
	GeneratedSum         *float64            `json:"generated_sum"`
	GeneratedRandomValue *float64            `json:"generated_random_value"`
	GeneratedAt          *time.Time          `json:"generated_at"`
	SettingsSnapshot     *algorithm.Snapshot `json:"settings_snapshot"`
}

func (req SaveAlgorithmResultsRequest) results() (settings.AlgorithmResults, error) {
	if req.RandomNumber == nil || req.SelectedCategory == nil || req.GeneratedSum == nil ||
		req.GeneratedRandomValue == nil || req.GeneratedAt == nil || req.SettingsSnapshot == nil {
		return settings.AlgorithmResults{}, recommend.ErrInvalidResults
	}

	return settings.AlgorithmResults{
		RandomNumber:         *req.RandomNumber,
		SelectedCategory:     *req.SelectedCategory,
		GeneratedSum:         *req.GeneratedSum,
		GeneratedRandomValue: *req.GeneratedRandomValue,
		GeneratedAt:          *req.GeneratedAt,
		SettingsSnapshot:     req.SettingsSnapshot,
	}, nil
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.settings.GetSettings(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, s, http.StatusOK)
}

func (a *API) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user := userID(r)
	if patch.Empty() {
		a.getSettings(w, r)
		return
	}

	now := a.recommender.Today()
	s, err := a.settings.UpdateSettings(r.Context(), user, func(s *settings.Settings) error {
		return patch.Apply(s, now)
	})
	if err != nil {
		if errors.Is(err, settings.ErrInvalidSettings) {
			metrics.RecordSettingsRejected("validation")
		}
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, s, http.StatusOK)
}

func (a *API) generateRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := a.recommender.GenerateRecommendation(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, rec, http.StatusOK)
}

func (a *API) generateNumber(w http.ResponseWriter, r *http.Request) {
	result, err := a.recommender.GenerateNumber(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, result, http.StatusOK)
}

func (a *API) algorithmStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.recommender.AlgorithmStatus(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, status, http.StatusOK)
}

func (a *API) saveRecommendation(w http.ResponseWriter, r *http.Request) {
	var req SaveRecommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.LastRecommendedTodoID == "" {
		writeError(w, r, fmt.Errorf("%w: last_recommended_todo_id is required", recommend.ErrInvalidTodo))
		return
	}

	var at time.Time
	if req.LastRecommendationTime != nil {
		at = *req.LastRecommendationTime
	}

	s, err := a.recommender.SaveRecommendation(r.Context(), userID(r), req.LastRecommendedTodoID, at)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, SaveRecommendationResponse{Success: true, Settings: s}, http.StatusOK)
}

func (a *API) saveAlgorithmResults(w http.ResponseWriter, r *http.Request) {
	var req SaveAlgorithmResultsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	results, err := req.results()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := a.recommender.SaveAlgorithmResults(r.Context(), userID(r), results); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, MessageResponse{
		Success: true,
		Message: "Algorithm results saved successfully",
	}, http.StatusOK)
}
