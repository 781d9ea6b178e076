package domain

import (
	"errors"

	authdomain "github.com/smallbiznis/teamroster/internal/auth/domain"
)

var (
	ErrInvitationNotFound  = errors.New("invitation_not_found")
	ErrAlreadyMember       = errors.New("already_member")
	ErrInvalidEmail        = authdomain.ErrInvalidEmail
	ErrInvalidInviter      = errors.New("invalid_inviter")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrTransactionRequired = errors.New("transaction_required")
)
