// Package domain contains core types for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents a registered account. Email is stored normalized.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	DisplayName  string       `gorm:"column:display_name;type:text;not null;default:''" json:"display_name"`
	PasswordHash *string      `gorm:"type:text" json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
