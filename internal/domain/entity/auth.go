package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionExpired is returned when an AuthContext is past its expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrUnknownRole is returned for a role outside admin, operator and regulator
	ErrUnknownRole = errors.New("unknown role")
)

// Role is resolved once per session and never re-derived from the token
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOperator  Role = "operator"
	RoleRegulator Role = "regulator"
)

// ParseRole converts a claim value into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleOperator, RoleRegulator:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// AuthContext is the caller identity threaded explicitly into every call that
// reaches the reporting service.
type AuthContext struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid checks expiry against the supplied clock reading. A zero ExpiresAt never expires.
func (a AuthContext) Valid(now time.Time) error {
	if !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// Is reports whether the session holds the given role
func (a AuthContext) Is(role Role) bool {
	return a.Role == role
}
