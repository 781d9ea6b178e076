package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	ErrLockNotConfigured = errors.New("lock_not_configured")
	ErrInvalidLockKey    = errors.New("invalid_lock_key")
	ErrInvalidLockTTL    = errors.New("invalid_lock_ttl")
)

// Deletes the key only while it still carries the caller's token, so an
// expired holder cannot free a slot someone else has taken since.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived, token-owned slots in Redis.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// TryLock claims key for ttl. ok is false when another holder has it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	if l == nil || l.client == nil {
		return "", false, ErrLockNotConfigured
	}
	if key == "" {
		return "", false, ErrInvalidLockKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidLockTTL
	}

	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees key if token still owns it and reports whether it did.
func (l *Locker) Release(ctx context.Context, key, token string) (bool, error) {
	if l == nil || l.client == nil || key == "" || token == "" {
		return false, nil
	}
	deleted, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("release %s: %w", key, err)
	}
	return deleted == 1, nil
}
