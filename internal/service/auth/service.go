// Package auth implements account registration and login sessions on top of
// the user and session collections.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"dharmabot/internal/auth"
	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/repositories"
	"dharmabot/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgPasswordMismatch   = "Passwords do not match."
	msgPasswordTooShort   = "Password must be at least 6 characters long."
	msgPasswordTooLong    = "Password must be at most 72 bytes long."
	msgInvalidEmail       = "Invalid email format."
	msgInvalidPhone       = "Invalid phone number format (10-15 digits)."
	msgInvalidProfileType = "Please select a valid profile type."
	msgBadCredentials     = "Invalid email or password."
)

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(fmt.Sprintf(`^\d{%d,%d}$`, config.MinPhoneDigits, config.MaxPhoneDigits))
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Service implements services.AuthService.
type Service struct {
	users    repositories.UserRepository
	sessions repositories.AuthSessionRepository
	tokens   tokenSigner
	identity auth.IdentityVerifier
	hashCost int
	newID    func() string
	logger   *slog.Logger
}

type tokenSigner interface {
	auth.TokenIssuer
	auth.TokenVerifier
}

// Option configures a Service.
type Option func(*Service)

// WithIdentityVerifier accepts tokens from an external identity provider in
// addition to locally issued session tokens.
func WithIdentityVerifier(v auth.IdentityVerifier) Option {
	return func(s *Service) { s.identity = v }
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// NewService creates the auth service.
func NewService(
	users repositories.UserRepository,
	sessions repositories.AuthSessionRepository,
	tokens *auth.SessionTokens,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		newID:    uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ services.AuthService = (*Service)(nil)

func (s *Service) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResult, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &domain.ValidationError{Message: msgPasswordTooLong}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:          s.newID(),
		ProfileType: req.ProfileType,
		Email:       strings.ToLower(req.Email),
		Phone:       req.Phone,
		Password:    string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "profile_type", user.ProfileType)

	return s.startSession(ctx, user.Session())
}

// validateRegistration checks the form one rule at a time so the first
// failing rule decides the message.
func validateRegistration(req *services.RegisterRequest) error {
	password := req.Password
	steps := []struct {
		value any
		rules []validation.Rule
	}{
		{req.ConfirmPassword, []validation.Rule{
			validation.By(func(any) error {
				if req.ConfirmPassword != password {
					return errors.New(msgPasswordMismatch)
				}
				return nil
			}),
		}},
		{password, []validation.Rule{
			validation.Required.Error(msgPasswordTooShort),
			validation.RuneLength(config.MinPasswordLength, 0).Error(msgPasswordTooShort),
		}},
		{req.Email, []validation.Rule{
			validation.Required.Error(msgInvalidEmail),
			validation.Match(emailRe).Error(msgInvalidEmail),
		}},
		{whitespaceRe.ReplaceAllString(req.Phone, ""), []validation.Rule{
			validation.Required.Error(msgInvalidPhone),
			validation.Match(phoneRe).Error(msgInvalidPhone),
		}},
		{req.ProfileType, []validation.Rule{
			validation.By(func(any) error {
				if !req.ProfileType.Valid() {
					return errors.New(msgInvalidProfileType)
				}
				return nil
			}),
		}},
	}

	for _, step := range steps {
		if err := validation.Validate(step.value, step.rules...); err != nil {
			return &domain.ValidationError{Message: err.Error()}
		}
	}
	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.UnauthorizedError{Message: msgBadCredentials}
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.logger.Debug("login rejected", "user_id", user.ID)
		return nil, &domain.UnauthorizedError{Message: msgBadCredentials}
	}

	return s.startSession(ctx, user.Session())
}

func (s *Service) startSession(ctx context.Context, user *models.SessionUser) (*services.AuthResult, error) {
	sessionID := s.newID()
	if err := s.sessions.Put(ctx, sessionID, user); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, expiresAt, err := s.tokens.IssueToken(user, sessionID)
	if err != nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("session started", "user_id", user.ID, "session_id", sessionID)

	return &services.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session ended", "session_id", sessionID)
	return nil
}

func (s *Service) CurrentSession(ctx context.Context, sessionID string) (*models.SessionUser, error) {
	user, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if !user.Complete() {
		s.logger.Warn("stored session data is incomplete, clearing it", "session_id", sessionID)
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.Error("failed to clear invalid session", "session_id", sessionID, "error", err)
		}
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*services.Principal, error) {
	claims, err := s.tokens.VerifyToken(token)
	if err == nil {
		user, err := s.CurrentSession(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if user.ID != claims.GetUserID() {
			return nil, domain.ErrUnauthorized
		}
		return &services.Principal{User: user, SessionID: claims.ID}, nil
	}

	if s.identity == nil {
		return nil, domain.ErrUnauthorized
	}

	identity, err := s.identity.VerifyIdentity(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("no local account for identity", "email", identity.Email)
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &services.Principal{User: user.Session()}, nil
}
