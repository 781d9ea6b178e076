package domain

import (
	"errors"

	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
)

var (
	ErrMemberNotFound       = teamdomain.ErrMemberNotFound
	ErrSelfRemovalForbidden = errors.New("self_removal_forbidden")
	ErrLastMemberForbidden  = errors.New("last_member_forbidden")
)
