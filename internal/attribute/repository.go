package attribute

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAttributeNotFound is returned when an attribute does not exist or is not
// owned by the requesting user. The two cases are deliberately not
// distinguished so that foreign rows are indistinguishable from missing ones.
var ErrAttributeNotFound = errors.New("attribute not found")

// Update carries the fields applied by an owner-scoped update. File is nil
// when no replacement attachment was uploaded, leaving the stored reference
// untouched.
type Update struct {
	Key       string
	Value     string
	WhereUsed []string
	File      *FileRef
}

// Repository provides operations on the attributes table. All mutations are
// conditional on ownership: the WHERE clause matches both id and user_id in a
// single statement, so a concurrent owner change cannot slip through between
// a check and a write.
type Repository interface {
	Create(ctx context.Context, a *Attribute) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Attribute, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*Attribute, error)
	UpdateOwned(ctx context.Context, id, userID uuid.UUID, upd Update) (*Attribute, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
}
