package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/pkg/errors"
)

type UserService struct {
	client *Client
}

func (c *Client) Users() *UserService {
	return &UserService{client: c}
}

type changeRoleRequest struct {
	Role users.RoleType `json:"role"`
}

// List accepts both a bare array and {"users": [...]}.
func (s *UserService) List(ctx context.Context) ([]users.User, error) {
	var raw json.RawMessage
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: RouteUsers}, &raw); err != nil {
		return nil, errors.Wrap(err, "[Users.List]")
	}

	list := []users.User{}
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Users []users.User `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrap(err, "[Users.List] decode")
	}
	if wrapped.Users == nil {
		return list, nil
	}
	return wrapped.Users, nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errors.Wrapf(clienterrors.ErrInvalidID, "[Users.Delete] %d", id)
	}
	err := s.client.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf(RouteUser, id)}, nil)
	return errors.Wrap(err, "[Users.Delete]")
}

// ChangeRole sets a user's role. Changing your own role is refused locally
// using the cached current user, and a 403 from the backend is reported as
// the same ErrOwnRole rejection.
func (s *UserService) ChangeRole(ctx context.Context, id int, role users.RoleType) (*users.User, error) {
	if !role.Valid() {
		return nil, errors.Errorf("[Users.ChangeRole] unknown role %q", role)
	}

	current, err := s.client.store.User()
	if err != nil {
		return nil, errors.Wrap(err, "[Users.ChangeRole] read current user")
	}
	if current.Is(id) {
		return nil, clienterrors.ErrOwnRole
	}

	var updated users.User
	err = s.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf(RouteUserRole, id),
		Body:   changeRoleRequest{Role: role},
	}, &updated)
	if err != nil {
		if StatusCode(err) == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", clienterrors.ErrOwnRole, err)
		}
		return nil, errors.Wrap(err, "[Users.ChangeRole]")
	}
	return &updated, nil
}
