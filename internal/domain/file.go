package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxFolderDepth bounds file folder nesting.
const MaxFolderDepth = 10

// Folder is a hierarchical container for files, with per-folder access
// roles.
type Folder struct {
	ID            uuid.UUID
	ParentID      uuid.UUID // zero value = root
	Name          string
	MinReadRole   Role
	MinUploadRole Role
	Depth         int
	CreatedAt     time.Time
}

// File is a file record. BlobName is the opaque stored name, distinct
// from the user-facing DisplayName.
type File struct {
	ID          uuid.UUID
	FolderID    uuid.UUID
	DisplayName string
	BlobName    string
	Description string
	SizeBytes   int64
	UploaderID  int
	Downloads   int
	CreatedAt   time.Time
}
