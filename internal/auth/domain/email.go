package domain

import (
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lowercases an address after checking that it
// parses as a bare RFC 5322 address.
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
