package middleware

import (
	"net/http"

	"github.com/proid/proid/internal/api/response"
)

// RequireAdmin returns middleware that rejects non-admin identities with 403.
// It composes after Auth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "Authentication token required")
				return
			}

			if !identity.IsAdmin {
				response.Err(w, http.StatusForbidden, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
