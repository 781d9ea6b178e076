package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Invitation, error)
	List(ctx context.Context, teamID snowflake.ID) ([]Invitation, error)
	Resend(ctx context.Context, req ResendRequest) (*Invitation, error)
	// AutoResolveOnSignup converts every pending invitation for email into a
	// membership for userID. It runs on the caller's transaction.
	AutoResolveOnSignup(ctx context.Context, tx *gorm.DB, userID snowflake.ID, email string) ([]Invitation, error)
}

type CreateRequest struct {
	TeamID    snowflake.ID
	Email     string
	InviterID snowflake.ID
}

type ResendRequest struct {
	TeamID       snowflake.ID
	InvitationID snowflake.ID
	ActorID      snowflake.ID
}
