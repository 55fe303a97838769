package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ourtasker-backend/internal/httpx"
)

type Handler struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	logger *slog.Logger
}

func NewHandler(users UserStore, secret []byte, ttl time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		users:  users,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// ------------------------------------------------------------------
// POST /api/auth/register
// ------------------------------------------------------------------

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "hash password failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.users.Create(r.Context(), User{
		Email: req.Email,
		Name:  req.Name,
	}, string(hash))
	if errors.Is(err, ErrEmailTaken) {
		httpx.Error(w, http.StatusConflict, "email already exists")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create user failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// ------------------------------------------------------------------
// POST /api/auth/login
// ------------------------------------------------------------------

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	user, hash, err := h.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			h.logger.ErrorContext(r.Context(), "login lookup failed", "error", err)
		}
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// ------------------------------------------------------------------
// GET /api/auth/me
// ------------------------------------------------------------------

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user User) {
	token, err := GenerateToken(h.secret, Claims{UserID: user.ID, Email: user.Email}, h.ttl)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "sign token failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	httpx.JSON(w, status, AuthResponse{Success: true, Token: token, User: user})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
