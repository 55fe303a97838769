package ai

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/httpx"
	"ourtasker-backend/internal/observability"
	"ourtasker-backend/internal/tasks"
)

// recentActivityWindow is how many feed entries productivity insights look at.
const recentActivityWindow = 50

type Handler struct {
	tasks    tasks.Store
	feed     activity.Store
	recorder *activity.Recorder
	metrics  *observability.Metrics
	markdown goldmark.Markdown
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(store tasks.Store, feed activity.Store, rec *activity.Recorder, m *observability.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		tasks:    store,
		feed:     feed,
		recorder: rec,
		metrics:  m,
		markdown: goldmark.New(),
		logger:   logger,
		now:      time.Now,
	}
}

type ChatRequest struct {
	Message string         `json:"message" validate:"required"`
	Context map[string]any `json:"context"`
}

type chatResponse struct {
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions"`
	HTML        string   `json:"html,omitempty"`
}

// Chat answers POST /api/ai/chat. Add ?format=html to also get the
// response rendered from markdown.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)

	snapshot, err := h.tasks.List(r.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load tasks for chat failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to process AI request")
		return
	}

	now := h.now()
	resp, err := Respond(message, snapshot, now)
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpx.JSON(w, http.StatusBadRequest, map[string]any{
			"error": verr.Error(),
			"field": verr.Field,
		})
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "assistant failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to process AI request")
		return
	}

	if h.metrics != nil {
		h.metrics.AssistantQueries.WithLabelValues(string(resp.Intent)).Inc()
	}
	h.recorder.Record(r.Context(), user.ID, activity.AISuggestion, AuditDescription(message), "")

	out := chatResponse{Text: resp.Text, Suggestions: resp.Suggestions}
	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := h.markdown.Convert([]byte(resp.Text), &buf); err != nil {
			h.logger.WarnContext(r.Context(), "markdown render failed", "error", err)
		} else {
			out.HTML = buf.String()
		}
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"response":  out,
		"timestamp": now.UTC().Format(time.RFC3339Nano),
	})
}

type SuggestTasksRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
}

func (h *Handler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	var req SuggestTasksRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		httpx.Error(w, http.StatusBadRequest, "description required")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": SuggestTasks(desc),
		"description": desc,
	})
}

type GenerateSubtasksRequest struct {
	TaskID     string `json:"taskId" validate:"required,uuid"`
	Complexity string `json:"complexity" validate:"omitempty,oneof=simple medium complex"`
}

func (h *Handler) GenerateSubtasks(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req GenerateSubtasksRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	_, err := h.tasks.Get(r.Context(), user.ID, req.TaskID)
	if errors.Is(err, tasks.ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load task for subtasks failed", "task_id", req.TaskID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to generate subtasks")
		return
	}

	complexity := ComplexityMedium
	if req.Complexity != "" {
		complexity = Complexity(req.Complexity)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"subtasks": PhasedSubtasks(complexity),
		"taskId":   req.TaskID,
	})
}

func (h *Handler) ProductivityInsights(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	snapshot, err := h.tasks.List(r.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load tasks for insights failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to analyze productivity")
		return
	}
	recent, err := h.feed.Recent(r.Context(), user.ID, recentActivityWindow)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load activities for insights failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to analyze productivity")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"insights": AnalyzeProductivity(snapshot, recent),
	})
}

// TaskStats serves GET /api/tasks/stats for the dashboard.
func (h *Handler) TaskStats(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	snapshot, err := h.tasks.List(r.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load tasks for stats failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   ComputeStats(snapshot, h.now()),
	})
}
