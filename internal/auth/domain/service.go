package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// CreateUser inserts an account inside tx so callers can attach further
	// writes to the same commit.
	CreateUser(ctx context.Context, tx *gorm.DB, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type CreateUserRequest struct {
	Email       string
	Password    string
	DisplayName string
}
