package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mflix-backend/internal/auth"
	"mflix-backend/internal/logging"
	"mflix-backend/internal/mailer"
	"mflix-backend/internal/middleware"
	"mflix-backend/internal/models"
	"mflix-backend/internal/repository"
)

const mailTimeout = 30 * time.Second

type AuthHandler struct {
	store     UserStore
	mailer    mailer.Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *logging.Logger
}

func NewAuthHandler(store UserStore, m mailer.Mailer, jwtSecret string, tokenTTL time.Duration, logger *logging.Logger) *AuthHandler {
	return &AuthHandler{
		store:     store,
		mailer:    m,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// --- Request / Response types ---

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"auth_token"`
	User  *models.User `json:"info"`
}

// --- POST /api/v1/user/register ---

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := &models.User{Name: req.Name, Email: req.Email}
	if err := user.SetPassword(req.Password); err != nil {
		h.logger.Errorw("hashing password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.store.AddUser(r.Context(), user); err != nil {
		status, msg := storeErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Errorw("adding user", "email", req.Email, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	token, ok := h.startSession(w, r, user)
	if !ok {
		return
	}

	// Welcome email is best-effort and must outlive the request
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
			h.logger.Warnw("sending welcome email", "email", user.Email, "error", err)
		}
	}()

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// --- POST /api/v1/user/login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.GetUser(r.Context(), req.Email)
	if err != nil {
		h.logger.Errorw("finding user", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || user.CheckPassword(req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, ok := h.startSession(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// --- POST /api/v1/user/logout ---

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ok, err := h.store.DeleteUserSessions(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("deleting session", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusInternalServerError, "logout was not acknowledged")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// startSession issues a token for user and stores it as the user's only
// session. It writes the error response itself and reports false on failure.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) (string, bool) {
	token, err := auth.GenerateToken(user, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Errorw("signing JWT", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return "", false
	}

	if err := h.store.CreateUserSession(r.Context(), user.SessionKey(), token); err != nil {
		status, msg := storeErrorStatus(err)
		if !errors.Is(err, repository.ErrDuplicateSession) {
			h.logger.Errorw("creating session", "user_id", user.SessionKey(), "error", err)
		}
		writeError(w, status, msg)
		return "", false
	}
	return token, true
}
