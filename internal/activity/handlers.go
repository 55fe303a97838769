package activity

import (
	"log/slog"
	"net/http"
	"strconv"

	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/httpx"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ListHandler serves GET /api/activities?limit=N, newest first.
func ListHandler(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				httpx.Error(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxLimit)
		}

		items, err := store.Recent(r.Context(), user.ID, limit)
		if err != nil {
			logger.ErrorContext(r.Context(), "list activities failed", "user_id", user.ID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to fetch activities")
			return
		}

		httpx.JSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"activities": items,
		})
	}
}
