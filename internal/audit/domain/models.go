// Package domain contains the append-only audit event model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SchemaVersion is stamped on every event payload written by this build.
const SchemaVersion = 1

const (
	EventTeamCreated         = "team.created"
	EventMemberAdded         = "member.added"
	EventInviteCreated       = "invite.created"
	EventInviteEmailFailed   = "invite.email_failed"
	EventInviteResent        = "invite.resent"
	EventInviteAutoResolved  = "invite.auto_resolved"
	EventTeamMemberRemoved   = "team_member.removed"
)

const (
	EntityTeam       = "team"
	EntityInvitation = "invitation"
	EntityMembership = "membership"
)

type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// Event is an immutable audit record. Rows are only ever inserted.
type Event struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	EventType     string            `gorm:"type:text;not null;index" json:"event_type"`
	ActorType     string            `gorm:"type:text;not null" json:"actor_type"`
	ActorID       *snowflake.ID     `gorm:"column:actor_id" json:"actor_id,omitempty"`
	TeamID        *snowflake.ID     `gorm:"column:team_id;index" json:"team_id,omitempty"`
	EntityType    string            `gorm:"type:text;not null" json:"entity_type"`
	EntityID      string            `gorm:"type:text;not null" json:"entity_id"`
	Action        string            `gorm:"type:text;not null" json:"action"`
	Payload       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`
	SchemaVersion int               `gorm:"not null;default:1" json:"schema_version"`
	CreatedAt     time.Time         `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "events" }
