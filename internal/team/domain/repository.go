package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTeam(ctx context.Context, team Team) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Team, error)
	// LockTeam reads the team row with an exclusive row lock. It must be
	// called on a transaction handle.
	LockTeam(ctx context.Context, id snowflake.ID) (*Team, error)

	AddMember(ctx context.Context, member Membership) error
	// AddMemberIfAbsent inserts the membership unless (team, user) already
	// exists and reports whether a row was written.
	AddMemberIfAbsent(ctx context.Context, member Membership) (bool, error)
	GetMember(ctx context.Context, teamID, userID snowflake.ID) (*Membership, error)
	CountMembers(ctx context.Context, teamID snowflake.ID) (int64, error)
	DeleteMember(ctx context.Context, teamID, userID snowflake.ID) (int64, error)
	ListMembers(ctx context.Context, teamID snowflake.ID) ([]MemberView, error)
}
