package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service answers whether a user may perform an action inside a team.
type Service interface {
	Authorize(ctx context.Context, actorID snowflake.ID, teamID snowflake.ID, object string, action string) error
}
