package users

import (
	"strconv"
	"strings"

	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/internal/utils"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// CurrentUser is the signed-in identity as read from the session token.
// It only drives what the client shows; the backend enforces authorization itself.
type CurrentUser struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role RoleType `json:"role"`
}

func (c *CurrentUser) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Is reports whether the listed account is the signed-in one.
func (c *CurrentUser) Is(userID int) bool {
	return c != nil && c.ID != "" && c.ID == strconv.Itoa(userID)
}

// DecodeCurrentUser reads id, name and role claims from a session token without
// verifying its signature. Identity falls back from "id" to "sub", and the
// backend sometimes nests extra claims under "identity".
func DecodeCurrentUser(rawToken string) (*CurrentUser, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, clienterrors.ErrNoSession
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrMalformedToken, "[DecodeCurrentUser] %v", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, clienterrors.ErrMalformedToken
	}

	if nested, ok := claims["identity"].(map[string]any); ok {
		for k, v := range nested {
			if _, exists := claims[k]; !exists {
				claims[k] = v
			}
		}
	}

	id := utils.ClaimString(claims["id"])
	if id == "" {
		id = utils.ClaimString(claims["sub"])
	}

	return &CurrentUser{
		ID:   id,
		Name: utils.ClaimString(claims["name"]),
		Role: ParseRole(utils.ClaimString(claims["role"])),
	}, nil
}
