package main

import (
	"context"
	"flag"
	"os"

	"github.com/PalashJyoti/mindsight-client/authflow"
	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/pkg/errors"
)

func (a *app) login(ctx context.Context) error {
	flow := authflow.NewLogin(a.client, a.flowOptions()...)

	for flow.State() == authflow.LoginCredentialEntry {
		username, err := a.prompt("Username")
		if err != nil {
			return err
		}
		password, err := a.promptSecret("Password")
		if err != nil {
			return err
		}
		if err := flow.SubmitCredentials(ctx, username, password); err != nil {
			a.printf("%s\n", flow.ErrorText())
		}
	}

	for flow.State() == authflow.LoginCodeEntry {
		code, err := a.prompt("Authenticator code")
		if err != nil {
			return err
		}
		if err := flow.SubmitCode(ctx, code); err != nil {
			a.printf("%s\n", flow.ErrorText())
		}
	}

	route, err := a.waitForNavigation(ctx)
	if err != nil {
		return err
	}
	u, _ := a.store.User()
	if u != nil {
		a.printf("Welcome %s (%s). Continue at %s\n", u.Name, u.Role, route)
	}
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	qrPath := fs.String("qr", "mindsight-qr.png", "where to save the enrolment QR code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow := authflow.NewSignup(a.client, a.flowOptions()...)
	for flow.State() == authflow.SignupForm {
		name, err := a.prompt("Name")
		if err != nil {
			return err
		}
		username, err := a.prompt("Username")
		if err != nil {
			return err
		}
		password, err := a.promptSecret("Password")
		if err != nil {
			return err
		}
		if err := flow.Submit(ctx, name, username, password); err != nil {
			a.printf("%s\n", flow.ErrorText())
		}
	}
	defer flow.Cancel()

	if err := os.WriteFile(*qrPath, flow.QRCode(), 0o600); err != nil {
		return errors.Wrap(err, "[signup] save QR code")
	}
	a.printf("Scan %s with your authenticator app. Continuing to login in %s...\n",
		*qrPath, a.cfg.GetSignupRedirectDelay())

	if _, err := a.waitForNavigation(ctx); err != nil {
		return err
	}
	a.printf("Account ready. Sign in with: mindsight login\n")
	return nil
}

func (a *app) forgot(ctx context.Context) error {
	flow := authflow.NewPasswordReset(a.client, a.flowOptions()...)
	defer flow.Cancel()

	for flow.State() == authflow.ResetCodeEntry {
		username, err := a.prompt("Username")
		if err != nil {
			return err
		}
		code, err := a.prompt("Authenticator code")
		if err != nil {
			return err
		}
		if err := flow.SubmitCode(ctx, username, code); err != nil {
			a.printf("%s\n", flow.ErrorText())
		}
	}

	for flow.State() == authflow.ResetNewPasswordEntry {
		password, err := a.promptSecret("New password")
		if err != nil {
			return err
		}
		if err := flow.SubmitNewPassword(ctx, password); err != nil {
			a.printf("%s\n", flow.ErrorText())
		}
	}

	a.printf("%s\n", flow.Notice())
	_, err := a.waitForNavigation(ctx)
	return err
}

func (a *app) logout(ctx context.Context) error {
	token, err := a.store.Token()
	if err != nil {
		return err
	}
	if token == "" {
		return clienterrors.ErrNoSession
	}
	if err := a.report(a.client.Auth().Logout(ctx)); err != nil {
		return err
	}
	a.printf("Signed out\n")
	return nil
}

func (a *app) whoami() error {
	u, err := a.store.User()
	if err != nil {
		return err
	}
	if u == nil {
		return clienterrors.ErrNoSession
	}
	a.printf("%s (id %s, role %s)\n", u.Name, u.ID, u.Role)
	return nil
}
