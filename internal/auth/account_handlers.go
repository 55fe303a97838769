package auth

import (
	"net/http"

	"ourtasker-backend/internal/httpx"
)

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; the client just drops it.
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		h.logger.ErrorContext(r.Context(), "delete account failed", "user_id", user.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.logger.InfoContext(r.Context(), "account deleted", "user_id", user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
