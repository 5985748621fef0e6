package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nadmax/yantodo/internal/algorithm"
	"github.com/nadmax/yantodo/internal/config"
	"github.com/nadmax/yantodo/internal/httputil"
	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/middleware"
	"github.com/nadmax/yantodo/internal/recommend"
	"github.com/nadmax/yantodo/internal/repository"
	"github.com/nadmax/yantodo/internal/settings"
	"github.com/nadmax/yantodo/internal/stats"
	"github.com/nadmax/yantodo/internal/task"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty request body")

type API struct {
	tasks       repository.TaskRepository
	settings    repository.SettingsRepository
	recommender *recommend.Service
	dashboard   *stats.Dashboard
	mux         *http.ServeMux
}

func NewAPI(tasks repository.TaskRepository, settingsRepo repository.SettingsRepository, recommender *recommend.Service, dashboard *stats.Dashboard) *API {
	api := &API{
		tasks:       tasks,
		settings:    settingsRepo,
		recommender: recommender,
		dashboard:   dashboard,
		mux:         http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /api/version", a.version)

	a.handleUser("GET /api/todos", a.listTodos)
	a.handleUser("POST /api/todos", a.createTodo)
	a.handleUser("POST /api/todos/cleanup-scheduled", a.cleanupScheduled)
	a.handleUser("PATCH /api/todos/{id}", a.updateTodo)
	a.handleUser("DELETE /api/todos/{id}", a.deleteTodo)

	a.handleUser("GET /api/user/settings", a.getSettings)
	a.handleUser("PATCH /api/user/settings", a.updateSettings)
	a.handleUser("POST /api/user/generate-recommendation", a.generateRecommendation)
	a.handleUser("POST /api/user/generate-number", a.generateNumber)
	a.handleUser("GET /api/user/algorithm-status", a.algorithmStatus)
	a.handleUser("POST /api/user/save-recommendation", a.saveRecommendation)
	a.handleUser("POST /api/user/save-algorithm-results", a.saveAlgorithmResults)
	a.handleUser("GET /api/user/stats", a.dashboard.GetStats)
}

// handleUser registers a route that requires a caller identity.
func (a *API) handleUser(pattern string, handler http.HandlerFunc) {
	a.mux.Handle(pattern, middleware.RequireUser(handler))
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (a *API) version(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, map[string]string{"version": config.Version}, http.StatusOK)
}

// writeError maps domain errors to status codes. Anything unrecognized is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		httputil.WriteJSONError(w, "Todo not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrConflict):
		logger.Warn("update conflict", "path", r.URL.Path, "err", err)
		httputil.WriteJSONError(w, "Conflicting update, please retry", http.StatusConflict)
	case errors.Is(err, task.ErrInvalidTask),
		errors.Is(err, settings.ErrInvalidSettings),
		errors.Is(err, algorithm.ErrInvalidConfig),
		errors.Is(err, recommend.ErrInvalidTodo),
		errors.Is(err, recommend.ErrInvalidResults):
		httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		httputil.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Warn("failed to close request body", "err", err)
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	return json.Unmarshal(body, v)
}

// userID is only called behind RequireUser.
func userID(r *http.Request) string {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}
