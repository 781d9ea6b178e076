package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/teamroster/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyTeamInvite = "teamroster:invite:team:%s"
	keyResendLock = "teamroster:invite:resend:%s"
)

// InviteLimiter guards the invitation endpoints. A nil limiter allows
// everything, which is what a disabled configuration produces.
type InviteLimiter struct {
	bucket *TokenBucket
	locker *Locker
	policy *config.InvitePolicyHolder
	log    *zap.Logger
}

func NewInviteLimiter(lc fx.Lifecycle, cfg config.Config, policy *config.InvitePolicyHolder, log *zap.Logger) (*InviteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return newInviteLimiter(client, policy, log), nil
}

func newInviteLimiter(client *redis.Client, policy *config.InvitePolicyHolder, log *zap.Logger) *InviteLimiter {
	return &InviteLimiter{
		bucket: NewTokenBucket(client),
		locker: NewLocker(client),
		policy: policy,
		log:    log.Named("ratelimit.invite"),
	}
}

func (l *InviteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowTeamInvite takes one token from the team's invitation bucket.
func (l *InviteLimiter) AllowTeamInvite(ctx context.Context, teamID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	policy := l.policy.Get()
	return l.bucket.Allow(ctx, fmt.Sprintf(keyTeamInvite, strings.TrimSpace(teamID)), policy.TeamInviteRate, policy.TeamInviteBurst)
}

// TryLockResend holds the invitation's resend slot for the cooldown period.
// The lock is left to expire after a completed resend.
func (l *InviteLimiter) TryLockResend(ctx context.Context, invitationID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyResendLock, strings.TrimSpace(invitationID)), l.policy.Get().ResendCooldown)
}

// ReleaseResend frees the slot early, used when the resend itself errored.
func (l *InviteLimiter) ReleaseResend(ctx context.Context, invitationID, token string) {
	if !l.Enabled() || token == "" {
		return
	}
	released, err := l.locker.Release(ctx, fmt.Sprintf(keyResendLock, strings.TrimSpace(invitationID)), token)
	if err != nil {
		l.log.Warn("failed to release resend lock", zap.String("invitation_id", invitationID), zap.Error(err))
		return
	}
	if !released {
		l.log.Debug("resend lock already expired", zap.String("invitation_id", invitationID))
	}
}

// ResendCooldown is how long a resend slot stays held.
func (l *InviteLimiter) ResendCooldown() time.Duration {
	if l == nil {
		return 0
	}
	return l.policy.Get().ResendCooldown
}
