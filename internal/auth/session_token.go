package auth

import (
	"errors"
	"log/slog"
	"time"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "dharmabot"

// SessionTokens issues and verifies HS256 tokens. The token ID is the key of
// the stored session blob.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewSessionTokens creates a signer. The secret must not be empty.
func NewSessionTokens(secret string, ttl time.Duration, logger *slog.Logger) (*SessionTokens, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	return &SessionTokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

func (s *SessionTokens) IssueToken(user *models.SessionUser, sessionID string) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:       user.Email,
		ProfileType: user.ProfileType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *SessionTokens) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		s.logger.Debug("session token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		s.logger.Debug("session token missing subject or id")
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
