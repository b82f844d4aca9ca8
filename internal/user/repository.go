package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = errors.New("email already in use")

// ErrDuplicateUsername is returned when the username is already taken.
var ErrDuplicateUsername = errors.New("username already in use")

// ProfileUpdate carries the mutable self-service profile fields.
type ProfileUpdate struct {
	Name  string
	Email string
}

// AdminUpdate carries the fields an admin may patch on any user.
// Nil fields are left unchanged.
type AdminUpdate struct {
	Name    *string
	IsAdmin *bool
}

// Repository provides operations on the users table.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateByAdmin(ctx context.Context, id uuid.UUID, upd AdminUpdate) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
