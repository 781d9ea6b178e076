package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/teamroster/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewInviteLimiter(fxtest.NewLifecycle(t), config.Config{}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	res, err := limiter.AllowTeamInvite(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := limiter.TryLockResend(context.Background(), "2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)

	limiter.ReleaseResend(context.Background(), "2", token)
}

func TestEnabledLimiterRequiresAddr(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true}}
	_, err := NewInviteLimiter(fxtest.NewLifecycle(t), cfg, nil, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestLimiterSurfacesRedisErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	limiter := newInviteLimiter(client, config.NewStaticInvitePolicyHolder(config.DefaultInvitePolicy()), zaptest.NewLogger(t))
	require.True(t, limiter.Enabled())

	res, err := limiter.AllowTeamInvite(context.Background(), "1")
	assert.Error(t, err)
	assert.False(t, res.Allowed)

	_, _, err = limiter.TryLockResend(context.Background(), "2")
	assert.Error(t, err)
}

func TestBuildResult(t *testing.T) {
	res := buildResult(false, 0, 1_000, 2, 5)
	assert.False(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 500*time.Millisecond, res.RetryAfter)
	assert.Equal(t, time.UnixMilli(1_000).Add(500*time.Millisecond), res.ResetTime)

	res = buildResult(true, 3, 1_000, 2, 5)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Zero(t, res.RetryAfter)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 40*time.Second, defaultBucketTTL(1, 20))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 0))
}

func TestCasts(t *testing.T) {
	assert.Equal(t, int64(3), castToInt(int64(3)))
	assert.Equal(t, int64(2), castToInt(2.9))
	assert.Equal(t, 1.5, castToFloat("1.5"))
	assert.Equal(t, 0.0, castToFloat("nope"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
}

func TestLockerValidation(t *testing.T) {
	var locker *Locker
	_, _, err := locker.TryLock(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrLockNotConfigured)

	released, err := locker.Release(context.Background(), "k", "t")
	assert.NoError(t, err)
	assert.False(t, released)

	locker = &Locker{client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})}
	t.Cleanup(func() { _ = locker.client.Close() })
	_, _, err = locker.TryLock(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrInvalidLockKey)
	_, _, err = locker.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidLockTTL)
}
