package apiclient

import (
	"context"
	"net/http"
	"strings"

	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/pkg/errors"
)

// AuthService covers the login, signup, password reset and logout endpoints.
type AuthService struct {
	client *Client
}

func (c *Client) Auth() *AuthService {
	return &AuthService{client: c}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type codeRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type signupRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse is the generic {"message": ...} success body
type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Login checks the password. Success means the backend now expects the
// one-time code; no token is issued yet.
func (a *AuthService) Login(ctx context.Context, username, password string) (*MessageResponse, error) {
	var resp MessageResponse
	err := a.client.Do(ctx, Request{
		Method:          http.MethodPost,
		Path:            RouteAuthLogin,
		Body:            credentialsRequest{Username: username, Password: password},
		NoSessionExpiry: true,
	}, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "[Auth.Login]")
	}
	return &resp, nil
}

// VerifyTOTP submits the one-time code and returns the session token, which
// is "" when the backend accepted the code without issuing one.
func (a *AuthService) VerifyTOTP(ctx context.Context, username, code string) (string, error) {
	var resp MessageResponse
	err := a.client.Do(ctx, Request{
		Method:          http.MethodPost,
		Path:            RouteAuthVerifyTOTP,
		Body:            codeRequest{Username: username, Token: code},
		NoSessionExpiry: true,
	}, &resp)
	if err != nil {
		return "", errors.Wrap(err, "[Auth.VerifyTOTP]")
	}
	return resp.Token, nil
}

// Signup registers an account and returns the PNG enrolment QR code for the
// authenticator app.
func (a *AuthService) Signup(ctx context.Context, name, username, password string) ([]byte, error) {
	name, username = strings.TrimSpace(name), strings.TrimSpace(username)
	if name == "" || username == "" || password == "" {
		return nil, errors.Wrap(clienterrors.ErrMissingField, "[Auth.Signup] name, username and password are required")
	}

	qr, _, err := a.client.DoRaw(ctx, Request{
		Method:          http.MethodPost,
		Path:            RouteAuthSignup,
		Body:            signupRequest{Username: username, Name: name, Password: password},
		NoSessionExpiry: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Auth.Signup]")
	}
	return qr, nil
}

// VerifyTOTPForReset proves control of the account before a password reset.
func (a *AuthService) VerifyTOTPForReset(ctx context.Context, username, code string) error {
	err := a.client.Do(ctx, Request{
		Method:          http.MethodPost,
		Path:            RouteAuthVerifyTOTPForReset,
		Body:            codeRequest{Username: username, Token: code},
		NoSessionExpiry: true,
	}, nil)
	return errors.Wrap(err, "[Auth.VerifyTOTPForReset]")
}

func (a *AuthService) ResetPassword(ctx context.Context, username, newPassword string) error {
	err := a.client.Do(ctx, Request{
		Method:          http.MethodPost,
		Path:            RouteAuthResetPassword,
		Body:            resetPasswordRequest{Username: username, NewPassword: newPassword},
		NoSessionExpiry: true,
	}, nil)
	return errors.Wrap(err, "[Auth.ResetPassword]")
}

// Logout ends the session on the backend and then clears the local token and
// cached user. On failure the local session is kept.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.client.Do(ctx, Request{Method: http.MethodPost, Path: RouteAuthLogout}, nil); err != nil {
		return errors.Wrap(err, "[Auth.Logout]")
	}
	return errors.Wrap(a.client.store.Clear(), "[Auth.Logout] clear session")
}
