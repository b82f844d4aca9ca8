package dataconsumer

import (
	"time"

	"github.com/google/uuid"
)

// DataConsumer represents a row in the data_consumers table.
type DataConsumer struct {
	ID             uuid.UUID
	Name           string
	Description    *string
	CreatedBy      uuid.UUID
	IsAdminDefined bool
	IsPrivate      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Source labels where a consumer record came from, derived from the
// admin-defined flag for display purposes.
func (d *DataConsumer) Source() string {
	if d.IsAdminDefined {
		return "Admin Defined"
	}
	return "User Created"
}
