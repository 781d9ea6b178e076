// Package domain contains the invitation model, its state machine and the
// ports the invitation service depends on.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusAdded   Status = "added"
	StatusFailed  Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAdded, StatusFailed:
		return true
	default:
		return false
	}
}

// Invitation is the permanent record of one outreach attempt. Rows are never
// deleted; (TeamID, Email) is unique.
type Invitation struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	TeamID        snowflake.ID  `gorm:"not null;uniqueIndex:ux_invitations_team_email,priority:1" json:"team_id"`
	Email         string        `gorm:"type:text;not null;uniqueIndex:ux_invitations_team_email,priority:2;index:idx_invitations_email_status,priority:1" json:"email"`
	Status        Status        `gorm:"type:text;not null;index:idx_invitations_email_status,priority:2" json:"status"`
	InvitedUserID *snowflake.ID `gorm:"column:invited_user_id" json:"invited_user_id,omitempty"`
	InvitedBy     snowflake.ID  `gorm:"column:invited_by;not null" json:"invited_by"`
	Code          string        `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ErrorMessage  *string       `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	LastSentAt    *time.Time    `gorm:"column:last_sent_at" json:"last_sent_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }
