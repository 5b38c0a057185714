package middlewares

import (
	"net/http"

	"lms/internal/models"

	"gorm.io/gorm"
)

// AuthorizeStaff rejects requests whose session does not belong to a staff
// account.
func AuthorizeStaff(db *gorm.DB) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(models.SessionClaimKey{}).(models.SessionClaims)
			if !ok {
				respondForbidden(w)
				return
			}

			var user models.User
			result := db.Where("id = ?", claims.UserID).First(&user)
			if result.Error != nil || !user.IsStaff {
				respondForbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func respondForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"errors":["FORBIDDEN"]}`))
}
