package authflow

import (
	"context"
	"fmt"

	"github.com/PalashJyoti/mindsight-client/apiclient"
)

type ResetState int

const (
	ResetCodeEntry ResetState = iota
	ResetNewPasswordEntry
	ResetDone
)

func (s ResetState) String() string {
	switch s {
	case ResetCodeEntry:
		return "code entry"
	case ResetNewPasswordEntry:
		return "new password entry"
	case ResetDone:
		return "done"
	}
	return fmt.Sprintf("reset state(%d)", int(s))
}

type resetEvent string

const (
	resetCodeAccepted resetEvent = "code accepted"
	passwordChanged   resetEvent = "password changed"
)

func resetTransition(s ResetState, e resetEvent) (ResetState, error) {
	switch {
	case s == ResetCodeEntry && e == resetCodeAccepted:
		return ResetNewPasswordEntry, nil
	case s == ResetNewPasswordEntry && e == passwordChanged:
		return ResetDone, nil
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e, s)
}

// PasswordReset is the forgot-password flow: the authenticator code proves
// control of the account, then a new password is set.
type PasswordReset struct {
	machine[ResetState, resetEvent]

	client   *apiclient.Client
	opts     options
	username string
}

func NewPasswordReset(client *apiclient.Client, opts ...Option) *PasswordReset {
	r := &PasswordReset{
		client: client,
		opts:   newOptions(client, opts),
	}
	r.state = ResetCodeEntry
	r.transition = resetTransition
	return r
}

func (r *PasswordReset) SubmitCode(ctx context.Context, username, code string) error {
	if err := r.begin(resetCodeAccepted); err != nil {
		return err
	}

	if err := r.client.Auth().VerifyTOTPForReset(ctx, username, code); err != nil {
		r.fail(resetFailureText(err, msgInvalidTOTP))
		return err
	}

	r.mu.Lock()
	r.username = username
	r.mu.Unlock()
	r.succeed(resetCodeAccepted)
	return nil
}

// SubmitNewPassword sets the password for the verified account and sends the
// user to the login screen after a short delay.
func (r *PasswordReset) SubmitNewPassword(ctx context.Context, newPassword string) error {
	if err := r.begin(passwordChanged); err != nil {
		return err
	}

	r.mu.Lock()
	username := r.username
	r.mu.Unlock()

	if err := r.client.Auth().ResetPassword(ctx, username, newPassword); err != nil {
		r.fail(resetFailureText(err, msgResetFailed))
		return err
	}

	r.mu.Lock()
	r.notice = msgResetComplete
	r.mu.Unlock()
	r.succeed(passwordChanged)
	r.opts.logger.Info().Str("username", username).Msg("Password reset")

	route := r.opts.flow.GetLoginRoute()
	r.redirectAfter(r.opts.scheduler, r.opts.flow.GetResetRedirectDelay(), func() {
		r.opts.navigator.Navigate(route)
	})
	return nil
}
