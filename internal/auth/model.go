package auth

import "github.com/google/uuid"

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}
