package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/proid/proid/internal/api/response"
	"github.com/proid/proid/internal/auth"
	"github.com/proid/proid/internal/user"
)

const identityKey contextKey = "identity"

// Auth is middleware that resolves the Authorization: Bearer header to an
// Identity via the token verifier and user repository.
//
// Missing header or token: 401. Signature/expiry failure: 403. Token valid
// but the referenced user no longer exists: 401.
func Auth(issuer *auth.TokenIssuer, users user.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			rawToken, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || rawToken == "" {
				response.Err(w, http.StatusUnauthorized, "Authentication token required")
				return
			}

			userID, err := issuer.Verify(rawToken)
			if err != nil {
				response.Err(w, http.StatusForbidden, "Invalid token")
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					response.Err(w, http.StatusUnauthorized, "User not found")
					return
				}
				slog.Error("failed to resolve token user", "error", err, "requestId", GetRequestID(r.Context()))
				response.Err(w, http.StatusInternalServerError, "Authentication failed")
				return
			}

			identity := &auth.Identity{UserID: u.ID, IsAdmin: u.IsAdmin}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a context carrying the given identity, as the Auth
// middleware would have set it.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
