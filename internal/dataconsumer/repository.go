package dataconsumer

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrConsumerNotFound is returned when a data consumer does not exist or is
// not visible/mutable for the requesting user.
var ErrConsumerNotFound = errors.New("data consumer not found")

// ErrDuplicateName is returned when the globally unique name is taken.
var ErrDuplicateName = errors.New("data consumer name already exists")

// Update carries the mutable fields of a data consumer. IsAdminDefined is a
// pointer because only admins may change it; nil leaves it as stored.
type Update struct {
	Name           string
	Description    *string
	IsPrivate      bool
	IsAdminDefined *bool
}

// Repository provides operations on the data_consumers table.
//
// Visibility rule: a record is visible to its creator and, when
// admin-defined, to everyone. Mutations require the caller to be the creator
// or an admin, enforced in a single conditional statement.
type Repository interface {
	Create(ctx context.Context, d *DataConsumer) error
	ListVisible(ctx context.Context, userID uuid.UUID, search string) ([]DataConsumer, error)
	GetVisible(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*DataConsumer, error)
	UpdateMutable(ctx context.Context, id, userID uuid.UUID, isAdmin bool, upd Update) (*DataConsumer, error)
	DeleteMutable(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error
}
