package api

import (
	"fmt"
	"net/http"

	"github.com/nadmax/yantodo/internal/httputil"
	"github.com/nadmax/yantodo/internal/logger"
	"github.com/nadmax/yantodo/internal/metrics"
	"github.com/nadmax/yantodo/internal/task"
)

type CleanupResponse struct {
	Message        string   `json:"message"`
	ClearedCount   int      `json:"cleared_count"`
	ClearedTodoIDs []string `json:"cleared_todo_ids"`
}

func (a *API) listTodos(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.tasks.ListTasks(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	httputil.WriteJSON(w, tasks, http.StatusOK)
}

// createTodo accepts the same fields as an update. The title is required
// and the priority defaults to low.
func (a *API) createTodo(w http.ResponseWriter, r *http.Request) {
	var req task.Patch
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Title == nil {
		writeError(w, r, fmt.Errorf("%w: title is required", task.ErrInvalidTask))
		return
	}

	now := a.recommender.Today()
	t := task.NewTask(userID(r), "", task.LowPriority)
	t.CreatedAt = now
	if err := req.Apply(t, now.Location(), now); err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.tasks.CreateTask(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, t, http.StatusCreated)
}

func (a *API) updateTodo(w http.ResponseWriter, r *http.Request) {
	var req task.Patch
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	t, err := a.tasks.GetTask(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := a.recommender.Today()
	if err := req.Apply(t, now.Location(), now); err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.tasks.UpdateTask(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, t, http.StatusOK)
}

func (a *API) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := a.tasks.DeleteTask(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, map[string]string{"message": "Todo deleted successfully"}, http.StatusOK)
}

func (a *API) cleanupScheduled(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	today := a.recommender.Today()

	ids, err := a.tasks.ClearPastScheduled(r.Context(), user, today)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	metrics.RecordScheduledCleared("request", len(ids))
	if len(ids) > 0 {
		logger.Debug("cleared past scheduled dates", "user_id", user, "cleared", len(ids))
	}

	httputil.WriteJSON(w, CleanupResponse{
		Message:        "Cleanup completed",
		ClearedCount:   len(ids),
		ClearedTodoIDs: ids,
	}, http.StatusOK)
}
