package services

import (
	"context"
	"time"

	"dharmabot/internal/domain/models"
)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	ProfileType     models.ProfileType `json:"profileType"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Password        string             `json:"password"`
	ConfirmPassword string             `json:"confirmPassword"`
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *models.SessionUser `json:"user"`
}

// Principal is the authenticated caller of a request. SessionID is empty
// for callers authenticated by an external identity provider.
type Principal struct {
	User      *models.SessionUser
	SessionID string
}

// AuthService handles accounts and login sessions.
type AuthService interface {
	// Register validates the form, creates the user and logs them in.
	// Validation failures are *domain.ValidationError with a user-facing
	// message; a taken email is a *domain.ConflictError.
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)

	// Login returns domain.ErrUnauthorized for an unknown email or a wrong
	// password without touching any stored session.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	Logout(ctx context.Context, sessionID string) error

	// CurrentSession returns the stored session user. An incomplete session
	// blob is deleted and reported as domain.ErrUnauthorized.
	CurrentSession(ctx context.Context, sessionID string) (*models.SessionUser, error)

	// Authenticate resolves a bearer token to the calling user.
	Authenticate(ctx context.Context, token string) (*Principal, error)
}
