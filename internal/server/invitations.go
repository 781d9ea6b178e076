package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/observability/logger"
	"go.uber.org/zap"
)

type createInvitationRequest struct {
	Email string `json:"email"`
}

func (s *Server) ListInvitations(c *gin.Context) {
	team, _ := teamID(c)

	invitations, err := s.invitationSvc.List(c.Request.Context(), team)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invitations})
}

func (s *Server) CreateInvitation(c *gin.Context) {
	actor, _ := actorID(c)
	team, _ := teamID(c)

	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	invitation, err := s.invitationSvc.Create(c.Request.Context(), invitationdomain.CreateRequest{
		TeamID:    team,
		Email:     req.Email,
		InviterID: actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// A failed delivery is still a created invitation; the status carries it.
	c.JSON(http.StatusCreated, gin.H{"data": invitation})
}

func (s *Server) ResendInvitation(c *gin.Context) {
	actor, _ := actorID(c)
	team, _ := teamID(c)
	ctx := c.Request.Context()

	invitationID, err := parsePathID(c, "invitation_id")
	if err != nil {
		AbortWithError(c, invitationdomain.ErrInvitationNotFound)
		return
	}

	token, ok, err := s.inviteLimiter.TryLockResend(ctx, invitationID.String())
	if err != nil {
		logger.FromContext(ctx).Warn("resend lock failed", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	if !ok {
		c.Header("Retry-After", retryAfterSeconds(s.inviteLimiter.ResendCooldown()))
		c.Header("X-Rate-Limited-Reason", rateLimitReasonResendCooldown)
		AbortWithError(c, ErrRateLimited)
		return
	}

	invitation, err := s.invitationSvc.Resend(ctx, invitationdomain.ResendRequest{
		TeamID:       team,
		InvitationID: invitationID,
		ActorID:      actor,
	})
	if err != nil {
		s.inviteLimiter.ReleaseResend(ctx, invitationID.String(), token)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invitation})
}
