package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, teamID, id snowflake.ID) (*Invitation, error)
	FindByTeamEmail(ctx context.Context, teamID snowflake.ID, email string) (*Invitation, error)
	ListByTeam(ctx context.Context, teamID snowflake.ID) ([]Invitation, error)
	// ListPendingByEmail locks and returns every pending invitation for
	// email across all teams.
	ListPendingByEmail(ctx context.Context, email string) ([]Invitation, error)
	Update(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
