package integrations

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/httpx"
	"ourtasker-backend/internal/observability"
)

const (
	serviceSlack  = "slack"
	serviceSheets = "sheets"
)

type Handler struct {
	slack   *Slack
	sheets  *Sheets
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(slack *Slack, sheets *Sheets, m *observability.Metrics, logger *slog.Logger) *Handler {
	return &Handler{slack: slack, sheets: sheets, metrics: m, logger: logger, now: time.Now}
}

func (h *Handler) count(service string, err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.metrics.Notifications.WithLabelValues(service, result).Inc()
}

type NotifyRequest struct {
	Webhook   string `json:"webhook"`
	Message   string `json:"message"`
	TaskTitle string `json:"taskTitle"`
}

// POST /api/integrations/slack/notify
func (h *Handler) SlackNotify(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NotifyRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Webhook) == "" {
		httpx.Error(w, http.StatusBadRequest, "Slack webhook URL required")
		return
	}

	msg := TaskUpdateMessage(req.TaskTitle, req.Message, user.Email, h.now())
	if h.sendSlack(w, r, req.Webhook, msg) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Slack notification sent",
		})
	}
}

// sendSlack posts msg and reports whether it was delivered. On failure it
// writes the error response. A malformed webhook is the caller's mistake and
// is not counted as a delivery.
func (h *Handler) sendSlack(w http.ResponseWriter, r *http.Request, webhook string, msg SlackMessage) bool {
	err := h.slack.Post(r.Context(), webhook, msg)
	if errors.Is(err, ErrInvalidWebhook) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	h.count(serviceSlack, err)
	if err != nil {
		h.logger.WarnContext(r.Context(), "slack notification failed", "error", err)
		httpx.Error(w, http.StatusBadGateway, "Failed to send Slack notification")
		return false
	}
	return true
}

type LogTaskRequest struct {
	SheetID string  `json:"sheetId"`
	Task    TaskRow `json:"task"`
}

// POST /api/integrations/sheets/log-task
func (h *Handler) SheetsLogTask(w http.ResponseWriter, r *http.Request) {
	var req LogTaskRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SheetID) == "" {
		httpx.Error(w, http.StatusBadRequest, "Google Sheets ID required")
		return
	}

	summary, err := h.sheets.LogTask(r.Context(), req.SheetID, req.Task)
	h.count(serviceSheets, err)
	if err != nil {
		h.logger.WarnContext(r.Context(), "sheets append failed", "sheet_id", req.SheetID, "error", err)
		httpx.Error(w, http.StatusBadGateway, "Failed to log task to Google Sheets")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task logged to Google Sheets",
		"data":    summary,
	})
}

type TestRequest struct {
	Config struct {
		Webhook string `json:"webhook"`
		SheetID string `json:"sheetId"`
	} `json:"config"`
}

// POST /api/integrations/test/{service}
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")

	var req TestRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	switch service {
	case serviceSlack:
		if strings.TrimSpace(req.Config.Webhook) == "" {
			httpx.Error(w, http.StatusBadRequest, "Webhook URL required")
			return
		}
		if !h.sendSlack(w, r, req.Config.Webhook, testMessage()) {
			return
		}
	case serviceSheets:
		if strings.TrimSpace(req.Config.SheetID) == "" {
			httpx.Error(w, http.StatusBadRequest, "Sheet ID required")
			return
		}
		err := h.sheets.Check(r.Context(), req.Config.SheetID)
		h.count(serviceSheets, err)
		if err != nil {
			h.logger.WarnContext(r.Context(), "sheets check failed", "sheet_id", req.Config.SheetID, "error", err)
			httpx.Error(w, http.StatusBadGateway, "Failed to test sheets integration")
			return
		}
	default:
		httpx.Error(w, http.StatusBadRequest, "Unknown service")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": service + " integration test successful",
	})
}
