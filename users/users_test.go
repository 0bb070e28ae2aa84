package users_test

import (
	"testing"
	"time"

	"github.com/PalashJyoti/mindsight-client/internal/utils"
	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/stretchr/testify/require"
)

func TestUser_LastLoginAt(t *testing.T) {
	t.Run("never signed in", func(t *testing.T) {
		u := users.User{ID: 1, Username: "priya"}
		require.True(t, u.LastLoginAt().IsZero())
	})

	t.Run("signed in", func(t *testing.T) {
		at := time.Date(2025, 3, 1, 10, 22, 31, 0, time.UTC)
		u := users.User{ID: 1, Username: "meera", LastLogin: utils.Ptr(utils.Timestamp{Time: at})}
		require.True(t, at.Equal(u.LastLoginAt()))
	})
}

func TestParseRole(t *testing.T) {
	require.Equal(t, users.RoleAdmin, users.ParseRole(" Admin "))
	require.Equal(t, users.RoleUser, users.ParseRole("user"))
	require.Equal(t, users.RoleUser, users.ParseRole("superuser"))
	require.False(t, users.RoleType("superuser").Valid())
}
