package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/teamroster/internal/observability/context"
)

const (
	HeaderUserID     = "X-User-ID"
	contextUserIDKey = "user_id"
	contextTeamIDKey = "team_id"
)

// ActorRequired reads the caller identity set by the authenticating gateway.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		userID, err := snowflake.ParseString(raw)
		if err != nil || userID <= 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := obscontext.WithActor(c.Request.Context(), "user", userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// TeamContext parses :team_id and scopes the request to it.
func (s *Server) TeamContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, err := parsePathID(c, "team_id")
		if err != nil {
			AbortWithError(c, ErrNotFound)
			return
		}

		ctx := obscontext.WithTeamID(c.Request.Context(), teamID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextTeamIDKey, teamID)
		c.Next()
	}
}

func actorID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok && id != 0
}

func teamID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextTeamIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok && id != 0
}

func parsePathID(c *gin.Context, name string) (snowflake.ID, error) {
	id, err := parseOptionalSnowflakeID(c.Param(name))
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, errInvalidSnowflakeID
	}
	return *id, nil
}
