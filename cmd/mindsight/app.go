package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PalashJyoti/mindsight-client/apiclient"
	"github.com/PalashJyoti/mindsight-client/authflow"
	"github.com/PalashJyoti/mindsight-client/internal/config"
	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const redisKeyPrefix = "mindsight"

type app struct {
	cfg    config.Config
	store  session.Store
	client *apiclient.Client
	in     *bufio.Reader
	stdin  io.Reader
	out    io.Writer

	// navigations receives the routes the flows and the client navigate to
	navigations chan string
	closeStore  func() error
}

func newApp(cfg config.Config, in io.Reader, out io.Writer) (*app, error) {
	store, closeStore, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		store:       store,
		in:          bufio.NewReader(in),
		stdin:       in,
		out:         out,
		navigations: make(chan string, 4),
		closeStore:  closeStore,
	}

	nav := apiclient.NavigatorFunc(func(path string) {
		log.Debug().Str("path", path).Msg("Navigate")
		select {
		case a.navigations <- path:
		default:
		}
	})

	a.client, err = apiclient.New(cfg.GetBaseURL(), store,
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithContentType(cfg.GetContentType()),
		apiclient.WithMaxRetries(cfg.GetMaxRetries()),
		apiclient.WithLoginRoute(cfg.GetLoginRoute()),
		apiclient.WithNavigator(nav),
		apiclient.WithLogger(log.Logger),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	return a, nil
}

// newStore picks redis when a URL is configured, the session file otherwise.
func newStore(cfg config.EnvConfig) (session.Store, func() error, error) {
	if url := cfg.GetRedisURL(); url != "" {
		store, err := session.NewRedisStore(url, redisKeyPrefix)
		if err != nil {
			return nil, nil, errors.Wrap(err, "[newStore] redis")
		}
		return store, store.Close, nil
	}
	return session.NewFileStore(cfg.GetSessionFile()), func() error { return nil }, nil
}

func (a *app) close() {
	if err := a.closeStore(); err != nil {
		log.Err(err).Msg("Failed to close session store")
	}
}

func (a *app) flowOptions() []authflow.Option {
	return []authflow.Option{authflow.WithFlowConfig(a.cfg)}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx)
	case "signup":
		return a.signup(ctx, rest)
	case "forgot":
		return a.forgot(ctx)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	case "cameras":
		return a.cameras(ctx, rest)
	case "users":
		return a.users(ctx, rest)
	case "logs":
		return a.logs(ctx, rest)
	case "detect":
		return a.detect(ctx, rest)
	case "summary":
		return a.summary(ctx)
	}
	usage()
	return errors.Wrapf(clienterrors.ErrUnsupported, "command %q", cmd)
}

// prompt reads one line; io.EOF means the user gave up.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a line without echoing it when stdin is a terminal and
// falls back to prompt otherwise.
func (a *app) promptSecret(label string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(label)
	}
	fmt.Fprintf(a.out, "%s: ", label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", errors.Wrap(err, "[app.promptSecret]")
	}
	return string(secret), nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints the user facing text for err and returns it for the exit status.
func (a *app) report(err error) error {
	if err != nil {
		a.printf("%s\n", apiclient.Message(err))
	}
	return err
}

// requireAdmin only hides admin commands; the backend enforces the role itself.
func (a *app) requireAdmin() error {
	u, err := a.store.User()
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return clienterrors.ErrAdminOnly
	}
	return nil
}

// waitForNavigation blocks until a flow navigates or ctx ends.
func (a *app) waitForNavigation(ctx context.Context) (string, error) {
	select {
	case route := <-a.navigations:
		return route, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
