package domain

import "errors"

var (
	ErrTeamNotFound   = errors.New("team_not_found")
	ErrMemberNotFound = errors.New("member_not_found")
	ErrInvalidName    = errors.New("invalid_team_name")
	ErrInvalidUser    = errors.New("invalid_user")
)
