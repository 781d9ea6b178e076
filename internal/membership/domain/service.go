// Package domain contains the membership guard contract and the roster read
// model.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
)

type Service interface {
	RemoveMember(ctx context.Context, req RemoveMemberRequest) error
	GetTeamMembers(ctx context.Context, teamID snowflake.ID) ([]RosterEntry, error)
}

type RemoveMemberRequest struct {
	TeamID  snowflake.ID
	UserID  snowflake.ID
	ActorID snowflake.ID
}

type EntryKind string

const (
	EntryMember     EntryKind = "member"
	EntryInvitation EntryKind = "invitation"
)

// RosterEntry is one row of the merged team view: either a real membership
// (status added) or an outstanding invitation.
type RosterEntry struct {
	Kind         EntryKind               `json:"kind"`
	UserID       *snowflake.ID           `json:"user_id,omitempty"`
	InvitationID *snowflake.ID           `json:"invitation_id,omitempty"`
	Email        string                  `json:"email"`
	DisplayName  string                  `json:"display_name,omitempty"`
	Role         teamdomain.Role         `json:"role,omitempty"`
	Status       invitationdomain.Status `json:"status"`
	ErrorMessage *string                 `json:"error_message,omitempty"`
	Since        time.Time               `json:"since"`
	LastSentAt   *time.Time              `json:"last_sent_at,omitempty"`
}
