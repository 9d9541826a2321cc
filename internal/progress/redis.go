package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"filedrive/internal/model"
)

const (
	entryPrefix = "filedrive:upload:"
	ownerPrefix = "filedrive:uploads:"
)

// raiseScript sets progress only when the entry exists and the new value is higher.
var raiseScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
local cur = tonumber(redis.call('HGET', KEYS[1], 'progress') or '0')
if tonumber(ARGV[1]) > cur then
  redis.call('HSET', KEYS[1], 'progress', ARGV[1], 'updated_at', ARGV[2])
end
return 1
`)

// failScript flags an existing entry as failed without recreating removed ones.
var failScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], 'error', '1', 'updated_at', ARGV[1])
return 1
`)

// RedisTracker stores each entry as a hash and indexes entries per owner in a set,
// so every API replica sees the same uploads. Both keys expire after ttl.
type RedisTracker struct {
	rdb redis.UniversalClient
	ttl time.Duration
	now func() time.Time
}

var _ Tracker = (*RedisTracker)(nil)

// NewRedisTracker wraps an existing client. A non-positive ttl defaults to 24h.
func NewRedisTracker(rdb redis.UniversalClient, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTracker{rdb: rdb, ttl: ttl, now: time.Now}
}

func entryKey(id string) string    { return entryPrefix + id }
func ownerKey(owner string) string { return ownerPrefix + owner }

func (t *RedisTracker) Register(ctx context.Context, owner, name string) (model.UploadProgress, error) {
	e := model.UploadProgress{
		ID:        xid.New().String(),
		Owner:     owner,
		Name:      name,
		UpdatedAt: t.now(),
	}
	_, err := t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, entryKey(e.ID), toHash(e))
		p.Expire(ctx, entryKey(e.ID), t.ttl)
		p.SAdd(ctx, ownerKey(owner), e.ID)
		p.Expire(ctx, ownerKey(owner), t.ttl)
		return nil
	})
	if err != nil {
		return model.UploadProgress{}, fmt.Errorf("register upload: %w", err)
	}
	return e, nil
}

func (t *RedisTracker) Update(ctx context.Context, id string, progress int) error {
	ok, err := raiseScript.Run(ctx, t.rdb, []string{entryKey(id)},
		clamp(progress), t.now().UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("update upload: %w", err)
	}
	if ok == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *RedisTracker) Fail(ctx context.Context, id string) error {
	ok, err := failScript.Run(ctx, t.rdb, []string{entryKey(id)}, t.now().UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("fail upload: %w", err)
	}
	if ok == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *RedisTracker) Remove(ctx context.Context, id string) error {
	e, err := t.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, entryKey(id))
		p.SRem(ctx, ownerKey(e.Owner), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func (t *RedisTracker) Get(ctx context.Context, id string) (model.UploadProgress, error) {
	h, err := t.rdb.HGetAll(ctx, entryKey(id)).Result()
	if err != nil {
		return model.UploadProgress{}, fmt.Errorf("get upload: %w", err)
	}
	if len(h) == 0 {
		return model.UploadProgress{}, ErrNotFound
	}
	return fromHash(id, h), nil
}

func (t *RedisTracker) List(ctx context.Context, owner string) ([]model.UploadProgress, error) {
	ids, err := t.rdb.SMembers(ctx, ownerKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	sort.Strings(ids)

	out := make([]model.UploadProgress, 0, len(ids))
	for _, id := range ids {
		e, err := t.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// expired entry; drop the dangling index member
			t.rdb.SRem(ctx, ownerKey(owner), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func toHash(e model.UploadProgress) map[string]any {
	errFlag := "0"
	if e.Error {
		errFlag = "1"
	}
	return map[string]any{
		"owner":      e.Owner,
		"name":       e.Name,
		"progress":   e.Progress,
		"error":      errFlag,
		"updated_at": e.UpdatedAt.UnixMilli(),
	}
}

func fromHash(id string, h map[string]string) model.UploadProgress {
	p, _ := strconv.Atoi(h["progress"])
	ms, _ := strconv.ParseInt(h["updated_at"], 10, 64)
	return model.UploadProgress{
		ID:        id,
		Owner:     h["owner"],
		Name:      h["name"],
		Progress:  p,
		Error:     h["error"] == "1",
		UpdatedAt: time.UnixMilli(ms),
	}
}
