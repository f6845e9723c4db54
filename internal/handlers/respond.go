package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"mflix-backend/internal/models"
	"mflix-backend/internal/repository"
)

// UserStore is the data access the handlers need. *repository.UserStore
// satisfies it.
type UserStore interface {
	AddUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, email string) (*models.User, error)
	CreateUserSession(ctx context.Context, userID, jwt string) error
	DeleteUserSessions(ctx context.Context, userID string) (bool, error)
	DeleteUser(ctx context.Context, email string) bool
	UpdateUserPreferences(ctx context.Context, email string, preferences map[string]any) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate reads a JSON body into req and runs its validate tags.
// The returned error message is safe to show to clients.
func decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return errors.New(strings.Join(fields, "; "))
		}
		return err
	}
	return nil
}

// storeErrorStatus maps store errors onto HTTP status codes.
func storeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrDuplicateUser):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, repository.ErrDuplicateSession):
		return http.StatusConflict, "session already exists"
	case errors.Is(err, repository.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
