package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"mflix-backend/internal/auth"
	"mflix-backend/internal/logging"
	"mflix-backend/internal/models"
)

type contextKey string

const userIDKey contextKey = "user_id"

// SessionFinder looks up the stored session of a user.
type SessionFinder interface {
	GetUserSession(ctx context.Context, userID string) (*models.Session, error)
}

// JWTAuth accepts requests carrying a valid bearer token that is also the
// token currently stored for its user. Logging out deletes the stored
// session, which invalidates the token here before it expires.
func JWTAuth(secret string, sessions SessionFinder, logger *logging.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := auth.ParseToken(tokenString, key)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			session, err := sessions.GetUserSession(r.Context(), claims.Subject)
			if err != nil {
				logger.Errorw("session lookup failed", "user_id", claims.Subject, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
				return
			}
			if session == nil || session.JWT != tokenString {
				unauthorized(w, "session expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
		})
	}
}

// GetUserID returns the authenticated user id, or "" outside JWTAuth.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID returns ctx carrying id as the authenticated user.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
