package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateTeam(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	team, err := s.teamSvc.Create(c.Request.Context(), actor, teamdomain.CreateTeamRequest{Name: req.Name})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": team})
}
