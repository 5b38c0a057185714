package middlewares

import (
	"context"
	"net/http"

	"lms/internal/configuration"
	"lms/internal/helpers"
	"lms/internal/models"

	"gorm.io/gorm"
)

// Authenticate resolves the session cookie into session claims and stores
// them in the request context. It never rejects: login, logout and the public
// views serve anonymous users, so each handler decides what an absent session
// means.
//
// When concurrent-login prevention is enabled, a session whose id no longer
// matches the profile's current session id is treated as anonymous.
func Authenticate(db *gorm.DB, config models.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(configuration.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := helpers.ParseSessionToken(config.JWTSecret, cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if config.Features.PreventConcurrentLogins {
				var profile models.UserProfile
				result := db.Where("user_id = ?", claims.UserID).First(&profile)
				if result.RowsAffected == 1 && profile.CurrentSessionID != claims.SessionID {
					// A newer login displaced this session.
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := context.WithValue(r.Context(), models.SessionClaimKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// IsAuthenticated reports whether the request carries valid session claims.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := ctx.Value(models.SessionClaimKey{}).(models.SessionClaims)
	return ok
}
