package signup

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/signup/domain"
	"gorm.io/gorm"
)

type invitationProvisioner struct {
	invitations invitationdomain.Service
}

// NewInvitationProvisioner resolves pending invitations for the new account.
func NewInvitationProvisioner(invitations invitationdomain.Service) domain.Provisioner {
	return &invitationProvisioner{invitations: invitations}
}

func (p *invitationProvisioner) Provision(ctx context.Context, tx *gorm.DB, userID snowflake.ID, email string) ([]invitationdomain.Invitation, error) {
	return p.invitations.AutoResolveOnSignup(ctx, tx, userID, email)
}
