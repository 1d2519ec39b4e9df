package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionTokens_RoundTrip(t *testing.T) {
	tokens, err := NewSessionTokens("test-secret", time.Hour, discardLogger())
	if err != nil {
		t.Fatalf("NewSessionTokens: %v", err)
	}
	user := &models.SessionUser{ID: "u1", Email: "a@example.com", Phone: "9876543210", ProfileType: models.ProfileLawyer}

	signed, expiresAt, err := tokens.IssueToken(user, "sess-1")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiresAt = %v, want about an hour from now", expiresAt)
	}

	claims, err := tokens.VerifyToken(signed)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.GetUserID() != "u1" || claims.ID != "sess-1" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ProfileType != models.ProfileLawyer || claims.Email != "a@example.com" {
		t.Errorf("claims profile/email = %q/%q", claims.ProfileType, claims.Email)
	}
}

func TestSessionTokens_Rejects(t *testing.T) {
	tokens, _ := NewSessionTokens("test-secret", time.Hour, discardLogger())
	other, _ := NewSessionTokens("other-secret", time.Hour, discardLogger())
	user := &models.SessionUser{ID: "u1", Email: "a@example.com", Phone: "9876543210", ProfileType: models.ProfileJudge}

	foreign, _, _ := other.IssueToken(user, "sess-1")

	expiredIssuer, _ := NewSessionTokens("test-secret", time.Hour, discardLogger())
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := expiredIssuer.IssueToken(user, "sess-1")

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1", Subject: "u1", Issuer: tokenIssuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: tokenIssuer},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"none algorithm", noneAlg},
		{"missing session id", noID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.VerifyToken(tt.token)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("VerifyToken() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestNewSessionTokens_RequiresSecret(t *testing.T) {
	if _, err := NewSessionTokens("", time.Hour, discardLogger()); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewSessionTokens("s", 0, discardLogger()); err == nil {
		t.Error("expected error for zero TTL")
	}
}
