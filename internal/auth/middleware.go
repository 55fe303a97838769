package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ourtasker-backend/internal/httpx"
)

type ctxKey string

const userKey ctxKey = "user"

type Middleware struct {
	secret []byte
	users  UserStore
	logger *slog.Logger
}

func NewMiddleware(secret []byte, users UserStore, logger *slog.Logger) Middleware {
	return Middleware{secret: secret, users: users, logger: logger}
}

// Handler requires a bearer token for a user that still exists.
// Missing token is 401; a bad token or a deleted user is 403.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(h, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			httpx.Error(w, http.StatusUnauthorized, "access token required")
			return
		}

		claims, err := ParseToken(m.secret, strings.TrimSpace(tokenString))
		if err != nil {
			httpx.Error(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		user, err := m.users.ByID(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, ErrUserNotFound) {
				m.logger.ErrorContext(r.Context(), "user lookup failed", "user_id", claims.UserID, "error", err)
			}
			httpx.Error(w, http.StatusForbidden, "invalid token or user not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok && u.ID != ""
}
