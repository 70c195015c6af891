package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"grievanceportal/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// busyLockTTL bounds how long a crashed request can hold a session
const busyLockTTL = time.Minute

// releaseBusyScript deletes the lock only while it still carries the
// caller's token, so a request that outlived busyLockTTL cannot free a lock
// taken by a later request.
var releaseBusyScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionCache handles Redis operations for intake session snapshots
type SessionCache interface {
	Set(ctx context.Context, snap *model.SessionSnapshot) error
	Get(ctx context.Context, id string) (*model.SessionSnapshot, error)
	Delete(ctx context.Context, id string) error

	// AcquireBusy takes the per-session submission lock. It returns false
	// when another request already holds it; otherwise the returned token
	// must be passed to ReleaseBusy.
	AcquireBusy(ctx context.Context, id string) (token string, ok bool, err error)
	ReleaseBusy(ctx context.Context, id, token string) error
	IsBusy(ctx context.Context, id string) (bool, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache. Snapshots expire ttl after
// their last write.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("intake:session:%s", id)
}

func (c *sessionCache) busyKey(id string) string {
	return fmt.Sprintf("intake:session:%s:busy", id)
}

func (c *sessionCache) Set(ctx context.Context, snap *model.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(snap.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id), c.busyKey(id)).Err()
}

func (c *sessionCache) AcquireBusy(ctx context.Context, id string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, c.busyKey(id), token, busyLockTTL).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *sessionCache) ReleaseBusy(ctx context.Context, id, token string) error {
	return releaseBusyScript.Run(ctx, c.client, []string{c.busyKey(id)}, token).Err()
}

func (c *sessionCache) IsBusy(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Exists(ctx, c.busyKey(id)).Result()
	return n > 0, err
}
