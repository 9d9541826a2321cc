package model

import "time"

// File is the metadata record of an object stored in the drive.
// (Name, ParentPath) identifies a file; uploading the same name into the
// same folder replaces the stored object and refreshes URL.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	ParentPath  string    `json:"parentPath"`
	StoragePath string    `json:"storagePath"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
