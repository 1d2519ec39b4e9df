package auth

import (
	"time"

	"dharmabot/internal/domain/models"
)

// TokenIssuer signs session tokens for users who logged in locally.
type TokenIssuer interface {
	// IssueToken returns a signed token naming sessionID and its expiry.
	IssueToken(user *models.SessionUser, sessionID string) (string, time.Time, error)
}

// TokenVerifier validates session tokens issued by a TokenIssuer.
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)
}

// IdentityVerifier validates tokens minted by an external identity provider.
type IdentityVerifier interface {
	VerifyIdentity(tokenString string) (*models.IdentityClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
