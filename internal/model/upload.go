package model

import "time"

// UploadProgress tracks a single in-flight upload.
// Progress is a whole percentage in [0, 100]. A failed upload keeps its entry
// with Error set until the owner dismisses it.
type UploadProgress struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	Name      string    `json:"name"`
	Progress  int       `json:"progress"`
	Error     bool      `json:"error"`
	UpdatedAt time.Time `json:"updatedAt"`
}
