package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// publicRoutes are served without a token.
var publicRoutes = map[string]bool{
	"GET /health":             true,
	"POST /api/auth/register": true,
	"POST /api/auth/login":    true,
}

// Auth validates the bearer token on every non-public request and stores
// the user in the request context. The token only names a stored session,
// so a logged-out token stops working immediately.
func Auth(authenticator Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicRoutes[r.Method+" "+r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, httputil.WithSession(r, principal.User, principal.SessionID))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
