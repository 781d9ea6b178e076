package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
)

func (s *Server) ListEvents(c *gin.Context) {
	team, _ := teamID(c)

	before, err := parseOptionalTime(c.Query("before"))
	if err != nil {
		AbortWithError(c, newValidationError("before", "invalid_time", "before must be RFC3339 or YYYY-MM-DD"))
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
		return
	}

	events, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListEventsRequest{
		TeamID:     team,
		EventType:  c.Query("event_type"),
		EntityType: c.Query("entity_type"),
		Before:     before,
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}
