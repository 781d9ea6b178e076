package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	membershipdomain "github.com/smallbiznis/teamroster/internal/membership/domain"
)

func (s *Server) GetTeamMembers(c *gin.Context) {
	team, _ := teamID(c)

	roster, err := s.membershipSvc.GetTeamMembers(c.Request.Context(), team)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": roster})
}

func (s *Server) RemoveMember(c *gin.Context) {
	actor, _ := actorID(c)
	team, _ := teamID(c)

	userID, err := parsePathID(c, "user_id")
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.membershipSvc.RemoveMember(c.Request.Context(), membershipdomain.RemoveMemberRequest{
		TeamID:  team,
		UserID:  userID,
		ActorID: actor,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
