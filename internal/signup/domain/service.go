package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamroster/internal/auth/domain"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"gorm.io/gorm"
)

type Service interface {
	Signup(ctx context.Context, req Request) (*Result, error)
}

type Request struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type Result struct {
	User                *authdomain.User              `json:"user"`
	ResolvedInvitations []invitationdomain.Invitation `json:"resolved_invitations"`
}

// Provisioner runs inside the registration transaction once the user row
// exists. It attaches the new account to whatever was waiting for it.
type Provisioner interface {
	Provision(ctx context.Context, tx *gorm.DB, userID snowflake.ID, email string) ([]invitationdomain.Invitation, error)
}

var ErrInvalidRequest = errors.New("invalid_signup_request")
