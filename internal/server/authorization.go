package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) authorizeTeamAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		team, ok := teamID(c)
		if !ok {
			AbortWithError(c, ErrNotFound)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, team, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
