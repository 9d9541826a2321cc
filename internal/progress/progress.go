// Package progress keeps the registry of in-flight uploads shown to the user
// while files are transferred to object storage.
package progress

import (
	"context"
	"errors"
	"math"

	"filedrive/internal/model"
)

// ErrNotFound is returned for unknown or expired entries.
var ErrNotFound = errors.New("upload entry not found")

// Tracker stores progress entries. Implementations must be safe for concurrent use.
type Tracker interface {
	// Register creates an entry at 0% for owner's upload of name.
	Register(ctx context.Context, owner, name string) (model.UploadProgress, error)
	// Update raises the entry's progress; lower values are ignored.
	Update(ctx context.Context, id string, progress int) error
	// Fail flags the entry as errored. It stays listed until removed.
	Fail(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.UploadProgress, error)
	// List returns owner's entries ordered by registration.
	List(ctx context.Context, owner string) ([]model.UploadProgress, error)
}

// Percent converts transferred/total into a whole percentage in [0, 100].
func Percent(transferred, total int64) int {
	if total <= 0 || transferred <= 0 {
		return 0
	}
	if transferred >= total {
		return 100
	}
	return int(math.Round(float64(transferred) / float64(total) * 100))
}

// Active counts entries that have not failed.
func Active(entries []model.UploadProgress) int {
	n := 0
	for _, e := range entries {
		if !e.Error {
			n++
		}
	}
	return n
}

func clamp(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
