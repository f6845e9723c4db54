package handlers

import (
	"net/http"

	"mflix-backend/internal/logging"
	"mflix-backend/internal/middleware"
)

type UserHandler struct {
	store  UserStore
	logger *logging.Logger
}

func NewUserHandler(store UserStore, logger *logging.Logger) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// Preferences has no validate tag: a missing field is left nil and rejected
// by the store.
type UpdatePreferencesRequest struct {
	Preferences map[string]any `json:"preferences"`
}

// --- GET /api/v1/user ---

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserID(r.Context())
	if email == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.store.GetUser(r.Context(), email)
	if err != nil {
		h.logger.Errorw("finding user", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"info": user})
}

// --- DELETE /api/v1/user ---

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserID(r.Context())
	if email == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req DeleteAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.GetUser(r.Context(), email)
	if err != nil {
		h.logger.Errorw("finding user", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.CheckPassword(req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	if !h.store.DeleteUser(r.Context(), email) {
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- PUT /api/v1/user/preferences ---

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserID(r.Context())
	if email == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdatePreferencesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateUserPreferences(r.Context(), email, req.Preferences); err != nil {
		status, msg := storeErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Errorw("updating preferences", "email", email, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"preferences": req.Preferences})
}
