package tasks

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/httpx"
)

type Handler struct {
	store    Store
	activity *activity.Recorder
	logger   *slog.Logger
}

func NewHandler(store Store, rec *activity.Recorder, logger *slog.Logger) *Handler {
	return &Handler{store: store, activity: rec, logger: logger}
}

// ---------- GET /api/tasks ----------

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.store.List(r.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list tasks failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to fetch tasks")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tasks":   list,
	})
}

// ---------- POST /api/tasks ----------

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateTaskRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	status := StatusTodo
	if req.Status != "" {
		status, _ = ParseStatus(req.Status)
	}
	due, err := ParseDueDate(req.DueDate)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.store.Create(r.Context(), Task{
		UserID:      user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Priority:    Priority(req.Priority),
		DueDate:     due,
		Assignee:    user.Email,
		Tags:        NormalizeTags(req.Tags),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create task failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.activity.Record(r.Context(), user.ID, activity.TaskCreated,
		fmt.Sprintf("Created task %q", task.Title), task.ID)

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"task":    task,
	})
}

// ---------- PUT /api/tasks/{id} ----------

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	var req UpdateTaskRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Empty() {
		httpx.Error(w, http.StatusBadRequest, "no fields to update")
		return
	}

	task, prev, err := h.store.Update(r.Context(), user.ID, id, patch)
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "update task failed", "task_id", id, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.activity.Record(r.Context(), user.ID, activity.TaskUpdated,
		fmt.Sprintf("Updated task %q", task.Title), task.ID)
	if prev != StatusDone && task.Status == StatusDone {
		h.activity.Record(r.Context(), user.ID, activity.TaskCompleted,
			fmt.Sprintf("Completed task %q", task.Title), task.ID)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"task":    task,
	})
}

func (req UpdateTaskRequest) toPatch() (Patch, error) {
	var p Patch
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return Patch{}, errors.New("title cannot be blank")
		}
		p.Title = &t
	}
	p.Description = req.Description
	p.Assignee = req.Assignee
	if req.Priority != nil {
		pr := Priority(*req.Priority)
		p.Priority = &pr
	}
	if req.Status != nil {
		st, _ := ParseStatus(*req.Status)
		p.Status = &st
	}
	if req.DueDate != nil {
		due, err := ParseDueDate(*req.DueDate)
		if err != nil {
			return Patch{}, err
		}
		if due == nil {
			p.ClearDueDate = true
		} else {
			p.DueDate = due
		}
	}
	return p, nil
}

// ---------- DELETE /api/tasks/{id} ----------

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	err := h.store.Delete(r.Context(), user.ID, id)
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "delete task failed", "task_id", id, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// ---------- POST /api/tasks/{id}/comments ----------

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	var req CommentRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		httpx.Error(w, http.StatusBadRequest, "comment text required")
		return
	}

	c, err := h.store.AddComment(r.Context(), user.ID, Comment{
		TaskID:   id,
		AuthorID: user.ID,
		Text:     text,
		Mentions: req.Mentions,
	})
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "add comment failed", "task_id", id, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	h.activity.Record(r.Context(), user.ID, activity.CommentAdded, "Added a comment", id)

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"comment": c,
	})
}

// ---------- GET /api/tasks/search ----------

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	f, err := filterFromQuery(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.store.Search(r.Context(), user.ID, f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search tasks failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "search failed")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tasks":   list,
	})
}

func filterFromQuery(r *http.Request) (SearchFilter, error) {
	q := r.URL.Query()
	f := SearchFilter{Query: q.Get("q")}

	if v := filterValue(q.Get("status")); v != "" {
		st, ok := ParseStatus(v)
		if !ok {
			return SearchFilter{}, fmt.Errorf("unknown status %q", v)
		}
		f.Status = st
	}
	if v := filterValue(q.Get("priority")); v != "" {
		p := Priority(strings.ToLower(v))
		if p == PriorityUnset || !p.Valid() {
			return SearchFilter{}, fmt.Errorf("unknown priority %q", v)
		}
		f.Priority = p
	}
	f.Assignee = filterValue(q.Get("assignee"))
	return f, nil
}

// "all" means no filter.
func filterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
