package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by tokens issued at login. The JWT ID
// names the stored session blob, so deleting the blob revokes the token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	ProfileType ProfileType `json:"profile_type"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}

// IdentityClaims are the claims read from tokens minted by an external
// identity provider. Only the email is used to find the local account.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}
