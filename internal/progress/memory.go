package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"filedrive/internal/model"
)

// MemoryTracker keeps entries in process memory. Entries are lost on restart
// and are not shared between replicas; use RedisTracker for that.
type MemoryTracker struct {
	mu      sync.Mutex
	entries map[string]*model.UploadProgress
	now     func() time.Time
}

var _ Tracker = (*MemoryTracker)(nil)

// NewMemoryTracker returns an empty tracker. A nil now defaults to time.Now.
func NewMemoryTracker(now func() time.Time) *MemoryTracker {
	if now == nil {
		now = time.Now
	}
	return &MemoryTracker{
		entries: make(map[string]*model.UploadProgress),
		now:     now,
	}
}

func (t *MemoryTracker) Register(_ context.Context, owner, name string) (model.UploadProgress, error) {
	e := &model.UploadProgress{
		ID:        xid.New().String(),
		Owner:     owner,
		Name:      name,
		UpdatedAt: t.now(),
	}
	t.mu.Lock()
	t.entries[e.ID] = e
	t.mu.Unlock()
	return *e, nil
}

func (t *MemoryTracker) Update(_ context.Context, id string, progress int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return ErrNotFound
	}
	if p := clamp(progress); p > e.Progress {
		e.Progress = p
		e.UpdatedAt = t.now()
	}
	return nil
}

func (t *MemoryTracker) Fail(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Error = true
	e.UpdatedAt = t.now()
	return nil
}

func (t *MemoryTracker) Remove(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[id]; !ok {
		return ErrNotFound
	}
	delete(t.entries, id)
	return nil
}

func (t *MemoryTracker) Get(_ context.Context, id string) (model.UploadProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return model.UploadProgress{}, ErrNotFound
	}
	return *e, nil
}

func (t *MemoryTracker) List(_ context.Context, owner string) ([]model.UploadProgress, error) {
	t.mu.Lock()
	out := make([]model.UploadProgress, 0)
	for _, e := range t.entries {
		if e.Owner == owner {
			out = append(out, *e)
		}
	}
	t.mu.Unlock()

	// xid ids sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
