package users

import (
	"strings"
	"time"

	"github.com/PalashJyoti/mindsight-client/internal/utils"
)

// RoleType is the role the backend assigns to an account
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Can manage cameras and other users
	RoleUser  RoleType = "user"  // Dashboard and logs only
)

// ParseRole normalises a role string; anything unrecognised is a plain user.
func ParseRole(s string) RoleType {
	switch RoleType(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account as listed by the admin endpoints.
type User struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Username  string           `json:"username"`
	Role      RoleType         `json:"role"`
	LastLogin *utils.Timestamp `json:"last_login,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LastLoginAt is the zero time for an account that never signed in.
func (u *User) LastLoginAt() time.Time {
	return utils.Value(u.LastLogin).Time
}
