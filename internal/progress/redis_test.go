package progress

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrive/internal/model"
)

func newRedisTracker(t *testing.T, ttl time.Duration) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisTracker(rdb, ttl), mr
}

func TestRedisHashFields(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_123)
	h := toHash(model.UploadProgress{Owner: "u1", Name: "a.txt", Progress: 42, Error: true, UpdatedAt: at})

	assert.Equal(t, "1", h["error"])
	assert.Equal(t, int64(1_700_000_000_123), h["updated_at"])

	e := fromHash("id1", map[string]string{
		"owner": "u1", "name": "a.txt", "progress": "42", "error": "1", "updated_at": "1700000000123",
	})
	assert.Equal(t, "id1", e.ID)
	assert.Equal(t, 42, e.Progress)
	assert.True(t, e.Error)
	assert.True(t, at.Equal(e.UpdatedAt))
}

func TestNewRedisTracker_DefaultTTL(t *testing.T) {
	tr := NewRedisTracker(nil, 0)
	assert.Equal(t, 24*time.Hour, tr.ttl)
	assert.Equal(t, "filedrive:upload:x", entryKey("x"))
	assert.Equal(t, "filedrive:uploads:u", ownerKey("u"))
}

func TestRedisTracker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tr, mr := newRedisTracker(t, time.Minute)

	e, err := tr.Register(ctx, "u1", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(entryKey(e.ID)))
	assert.Equal(t, time.Minute, mr.TTL(ownerKey("u1")))

	require.NoError(t, tr.Update(ctx, e.ID, 60))
	require.NoError(t, tr.Update(ctx, e.ID, 30))
	got, err := tr.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Progress)
	require.NoError(t, tr.Update(ctx, e.ID, 250))
	got, err = tr.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress, "progress is clamped and never moves backwards")
	assert.Equal(t, "u1", got.Owner)

	require.NoError(t, tr.Fail(ctx, e.ID))
	list, err := tr.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Error)
	assert.Zero(t, Active(list))

	require.NoError(t, tr.Remove(ctx, e.ID))
	_, err = tr.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(entryKey(e.ID)))

	list, err = tr.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisTracker_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	tr, mr := newRedisTracker(t, time.Minute)

	assert.ErrorIs(t, tr.Update(ctx, "missing", 10), ErrNotFound)
	assert.ErrorIs(t, tr.Fail(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, tr.Remove(ctx, "missing"), ErrNotFound)
	_, err := tr.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, mr.Exists(entryKey("missing")), "no call recreates a removed entry")
}

func TestRedisTracker_ListDropsExpiredMembers(t *testing.T) {
	ctx := context.Background()
	tr, mr := newRedisTracker(t, time.Minute)

	old, err := tr.Register(ctx, "u1", "old.txt")
	require.NoError(t, err)
	mr.FastForward(30 * time.Second)
	fresh, err := tr.Register(ctx, "u1", "fresh.txt")
	require.NoError(t, err)

	// The first entry's hash expires while the owner index, refreshed by the
	// second registration, still lists it.
	mr.FastForward(45 * time.Second)
	require.False(t, mr.Exists(entryKey(old.ID)))

	list, err := tr.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)

	members, err := mr.Members(ownerKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID}, members)
}

func TestRedisTracker_ListsOnlyOwnEntries(t *testing.T) {
	ctx := context.Background()
	tr, _ := newRedisTracker(t, time.Minute)

	a, _ := tr.Register(ctx, "u1", "a.txt")
	_, _ = tr.Register(ctx, "u2", "b.txt")

	list, err := tr.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}
