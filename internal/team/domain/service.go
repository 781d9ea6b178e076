package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, actorID snowflake.ID, req CreateTeamRequest) (*Team, error)
	Get(ctx context.Context, id snowflake.ID) (*Team, error)
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}
