// Package domain contains the team and membership models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Team is a named group of members.
type Team struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

// Membership is keyed by (team, user); CreatedAt is the join time.
type Membership struct {
	TeamID    snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	UserID    snowflake.ID `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	Role      Role         `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "team_members" }

// MemberView is a membership joined with its user account.
type MemberView struct {
	UserID      snowflake.ID
	Email       string
	DisplayName string
	Role        Role
	JoinedAt    time.Time
}
