package usecase

import (
	"errors"
	"strings"
)

var (
	ErrRoleAlreadyExists  = errors.New("role already exists")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("user is locked out")
	ErrNotAdministrator   = errors.New("user is not an administrator")
)

// normalize produces the lookup key stored in the normalized fields.
func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
