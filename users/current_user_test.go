package users_test

import (
	"testing"

	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/users"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("unknown-to-the-client"))
	require.NoError(t, err)
	return token
}

func TestDecodeCurrentUser(t *testing.T) {
	t.Run("flat claims", func(t *testing.T) {
		u, err := users.DecodeCurrentUser(signedToken(t, jwtlib.MapClaims{"id": float64(7), "name": "Asha", "role": "admin"}))
		require.NoError(t, err)
		require.Equal(t, &users.CurrentUser{ID: "7", Name: "Asha", Role: users.RoleAdmin}, u)
		require.True(t, u.IsAdmin())
		require.True(t, u.Is(7))
		require.False(t, u.Is(8))
	})

	t.Run("sub and nested identity", func(t *testing.T) {
		u, err := users.DecodeCurrentUser(signedToken(t, jwtlib.MapClaims{
			"sub":      "12",
			"identity": map[string]any{"name": "Ravi", "role": "user"},
		}))
		require.NoError(t, err)
		require.Equal(t, "12", u.ID)
		require.Equal(t, "Ravi", u.Name)
		require.Equal(t, users.RoleUser, u.Role)
		require.False(t, u.IsAdmin())
	})

	t.Run("unknown role is a user", func(t *testing.T) {
		u, err := users.DecodeCurrentUser(signedToken(t, jwtlib.MapClaims{"sub": "1", "role": "root"}))
		require.NoError(t, err)
		require.Equal(t, users.RoleUser, u.Role)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := users.DecodeCurrentUser("  ")
		require.ErrorIs(t, err, clienterrors.ErrNoSession)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := users.DecodeCurrentUser("not-a-jwt")
		require.ErrorIs(t, err, clienterrors.ErrMalformedToken)
	})
}

func TestNilCurrentUser(t *testing.T) {
	var u *users.CurrentUser
	require.False(t, u.IsAdmin())
	require.False(t, u.Is(1))
}
