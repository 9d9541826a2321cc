package repository

import (
	"context"
	"time"

	"filedrive/internal/model"
)

// FileRepository defines data access for file metadata using SQL queries only.
type FileRepository interface {
	// Create inserts a new file record. It returns ErrConflict when a file with
	// the same name already exists in the parent folder.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// FindByNameAndParent returns the file stored under parentPath with the given name or ErrNotFound.
	FindByNameAndParent(ctx context.Context, name, parentPath string) (*model.File, error)

	// UpdateURL refreshes the download URL and size of an existing record.
	UpdateURL(ctx context.Context, id, url string, size int64, updatedAt time.Time) (*model.File, error)

	// List returns a page of files directly inside parentPath and the total count.
	List(ctx context.Context, parentPath string, pq PageQuery) (*PageResult[model.File], error)

	// Delete removes a file by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
