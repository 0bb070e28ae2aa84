package session

import "github.com/PalashJyoti/mindsight-client/users"

// Fixed key names, shared by every store implementation.
const (
	TokenKey       = "token"
	CurrentUserKey = "currentUser"
)

// Store holds the bearer token and the cached current user for one client.
// A missing token is not an error: Token returns "" and requests go out
// unauthenticated. Clear always removes the token and the user together.
type Store interface {
	// Token returns the stored bearer token, or "" when signed out
	Token() (string, error)

	// SetToken persists the token issued after two-factor login
	SetToken(token string) error

	// User returns the cached current user, or nil when none is cached
	User() (*users.CurrentUser, error)

	// SetUser caches the decoded current user
	SetUser(user *users.CurrentUser) error

	// Clear removes the token and the cached user
	Clear() error
}
