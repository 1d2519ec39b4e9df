package httputil

import (
	"context"
	"net/http"

	"dharmabot/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey    contextKey = "userID"
	userKey      contextKey = "user"
	sessionIDKey contextKey = "sessionID"
)

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithSession stores the authenticated user and their login session ID.
// sessionID is empty for callers authenticated by an external provider.
func WithSession(r *http.Request, user *models.SessionUser, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, user.ID)
	ctx = context.WithValue(ctx, userKey, user)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

// GetUser returns the authenticated user, or nil.
func GetUser(r *http.Request) *models.SessionUser {
	user, _ := r.Context().Value(userKey).(*models.SessionUser)
	return user
}

// GetSessionID returns the login session ID, or "".
func GetSessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey).(string)
	return id
}
