package authflow

import (
	"context"
	"fmt"

	"github.com/PalashJyoti/mindsight-client/apiclient"
)

type SignupState int

const (
	SignupForm SignupState = iota
	SignupEnrolled
)

func (s SignupState) String() string {
	switch s {
	case SignupForm:
		return "form"
	case SignupEnrolled:
		return "enrolled"
	}
	return fmt.Sprintf("signup state(%d)", int(s))
}

type signupEvent string

const accountCreated signupEvent = "account created"

func signupTransition(s SignupState, e signupEvent) (SignupState, error) {
	if s == SignupForm && e == accountCreated {
		return SignupEnrolled, nil
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e, s)
}

// Signup creates an account and hands back the QR code to enrol in an
// authenticator app. After a fixed delay the user is sent to the login screen.
type Signup struct {
	machine[SignupState, signupEvent]

	client *apiclient.Client
	opts   options
	qrCode []byte
}

func NewSignup(client *apiclient.Client, opts ...Option) *Signup {
	s := &Signup{
		client: client,
		opts:   newOptions(client, opts),
	}
	s.state = SignupForm
	s.transition = signupTransition
	return s
}

// QRCode is the PNG enrolment image, nil until the account exists.
func (s *Signup) QRCode() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qrCode
}

func (s *Signup) Submit(ctx context.Context, name, username, password string) error {
	if err := s.begin(accountCreated); err != nil {
		return err
	}

	qr, err := s.client.Auth().Signup(ctx, name, username, password)
	if err != nil {
		s.fail(signupFailureText(err))
		return err
	}

	s.mu.Lock()
	s.qrCode = qr
	s.mu.Unlock()
	s.succeed(accountCreated)

	route := s.opts.flow.GetLoginRoute()
	s.redirectAfter(s.opts.scheduler, s.opts.flow.GetSignupRedirectDelay(), func() {
		s.opts.navigator.Navigate(route)
	})
	return nil
}

// GoToLogin skips the wait and navigates now.
func (s *Signup) GoToLogin() {
	s.Cancel()
	s.opts.navigator.Navigate(s.opts.flow.GetLoginRoute())
}
