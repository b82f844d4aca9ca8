package attribute

import (
	"time"

	"github.com/google/uuid"
)

// FileRef describes a stored attachment on an attribute.
type FileRef struct {
	Path string // public path under the uploads prefix
	Name string // original client file name
	Type string // coarse category: image, document, audio, video, other
	Size int64  // bytes
}

// Attribute represents a row in the attributes table.
type Attribute struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Key       string
	Value     string
	WhereUsed []string
	File      *FileRef
	CreatedAt time.Time
	UpdatedAt time.Time
}
