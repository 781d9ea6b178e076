package server

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamroster/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	rateLimitReasonTeamInvite     = "team-invite-rate"
	rateLimitReasonResendCooldown = "resend-cooldown"
)

// InviteRateLimit takes a token from the team's invitation bucket.
func (s *Server) InviteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.inviteLimiter.Enabled() {
			c.Next()
			return
		}

		team, _ := teamID(c)
		ctx := c.Request.Context()

		result, err := s.inviteLimiter.AllowTeamInvite(ctx, team.String())
		if err != nil {
			logger.FromContext(ctx).Warn("team invite rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			logger.FromContext(ctx).Warn("team invite rate limit exceeded", zap.String("reason", rateLimitReasonTeamInvite))
			c.Header("Retry-After", retryAfterSeconds(result.RetryAfter))
			c.Header("X-Rate-Limited-Reason", rateLimitReasonTeamInvite)
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
