package middleware

import (
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/httputil"
)

// RequireFeature rejects users whose profile type cannot use the feature.
// It must run after Auth.
func RequireFeature(feature models.Feature, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := httputil.GetUser(r)
		if user == nil {
			httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !user.ProfileType.CanAccess(feature) {
			httputil.RespondProblem(w, http.StatusForbidden, httputil.CodeFeatureLocked, "this feature is not available for your profile")
			return
		}
		next.ServeHTTP(w, r)
	})
}
