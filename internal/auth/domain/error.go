package domain

import "errors"

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrUserNotFound    = errors.New("user_not_found")
	ErrUserExists      = errors.New("user_already_exists")
)
