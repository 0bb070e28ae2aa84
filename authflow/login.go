package authflow

import (
	"context"
	"fmt"

	"github.com/PalashJyoti/mindsight-client/apiclient"
	"github.com/PalashJyoti/mindsight-client/users"
)

type LoginState int

const (
	LoginCredentialEntry LoginState = iota
	LoginCodeEntry
	LoginAuthenticated
)

func (s LoginState) String() string {
	switch s {
	case LoginCredentialEntry:
		return "credential entry"
	case LoginCodeEntry:
		return "code entry"
	case LoginAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("login state(%d)", int(s))
}

type loginEvent string

const (
	credentialsAccepted loginEvent = "credentials accepted"
	codeAccepted        loginEvent = "code accepted"
)

func loginTransition(s LoginState, e loginEvent) (LoginState, error) {
	switch {
	case s == LoginCredentialEntry && e == credentialsAccepted:
		return LoginCodeEntry, nil
	case s == LoginCodeEntry && e == codeAccepted:
		return LoginAuthenticated, nil
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e, s)
}

// Login is the two-step sign in: password first, then the authenticator code.
// The session token only exists after the code step.
type Login struct {
	machine[LoginState, loginEvent]

	client   *apiclient.Client
	opts     options
	username string
}

func NewLogin(client *apiclient.Client, opts ...Option) *Login {
	l := &Login{
		client: client,
		opts:   newOptions(client, opts),
	}
	l.state = LoginCredentialEntry
	l.transition = loginTransition
	return l
}

// Username is the account whose code is expected, set after the password step.
func (l *Login) Username() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.username
}

// SubmitCredentials checks the password. On success the flow waits for the code;
// nothing is stored and nothing navigates.
func (l *Login) SubmitCredentials(ctx context.Context, username, password string) error {
	if err := l.begin(credentialsAccepted); err != nil {
		return err
	}

	if _, err := l.client.Auth().Login(ctx, username, password); err != nil {
		l.fail(loginFailureText(err, msgInvalidLogin))
		return err
	}

	l.mu.Lock()
	l.username = username
	l.mu.Unlock()
	l.succeed(credentialsAccepted)
	return nil
}

// SubmitCode verifies the authenticator code. A token in the answer is
// stored, the current user is cached and the flow moves to the dashboard.
// Any other outcome leaves the flow waiting for another code.
func (l *Login) SubmitCode(ctx context.Context, code string) error {
	if err := l.begin(codeAccepted); err != nil {
		return err
	}
	username := l.Username()

	token, err := l.client.Auth().VerifyTOTP(ctx, username, code)
	if err != nil {
		l.fail(loginFailureText(err, msgInvalidTOTP))
		return err
	}
	if token == "" {
		l.fail(msgInvalidTOTP)
		return ErrNoToken
	}

	store := l.client.Store()
	if err := store.SetToken(token); err != nil {
		l.fail(err.Error())
		return err
	}

	// The cached user only drives what is shown, so a token we cannot decode
	// still signs the user in.
	if user, err := users.DecodeCurrentUser(token); err != nil {
		l.opts.logger.Warn().Err(err).Msg("Failed to decode current user")
		if err := store.SetUser(nil); err != nil {
			l.opts.logger.Warn().Err(err).Msg("Failed to clear cached user")
		}
	} else if err := store.SetUser(user); err != nil {
		l.opts.logger.Warn().Err(err).Msg("Failed to cache current user")
	}

	l.succeed(codeAccepted)
	l.opts.logger.Info().Str("username", username).Msg("Signed in")
	if !l.isCancelled() {
		l.opts.navigator.Navigate(l.opts.flow.GetDashboardRoute())
	}
	return nil
}
