package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PalashJyoti/mindsight-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultContentType = "application/json"
	defaultLoginRoute  = "/login"
	DefaultMaxRetries  = 3
)

// Request describes one backend call. Everything else (base URL, timeout,
// default content type) is fixed on the Client.
type Request struct {
	Method string
	Path   string // Relative to the base URL, e.g. "/api/cameras"
	Query  url.Values
	Header http.Header
	Body   any // Encoded as JSON unless it is []byte or io.Reader

	// NoSessionExpiry is set on credential endpoints (login, code checks),
	// where a 401 is a wrong password or code rather than a dead session.
	NoSessionExpiry bool
}

// Client is the single point of contact with the backend.
type Client struct {
	baseURL     string
	contentType string
	timeout     time.Duration
	loginRoute  string
	maxRetries  int

	store      session.Store
	navigator  Navigator
	logger     zerolog.Logger
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error

	doer Doer
}

// ClientOption configures a Client at construction
type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithContentType(contentType string) ClientOption {
	return func(c *Client) {
		c.contentType = contentType
	}
}

func WithNavigator(nav Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = nav
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the transport. The client keeps its own copy with
// the fixed timeout applied; hc itself is not modified.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLoginRoute sets where an expired session sends the user
func WithLoginRoute(route string) ClientOption {
	return func(c *Client) {
		c.loginRoute = route
	}
}

// WithMaxRetries sets the default bound used by DoWithRetry callers that pass a negative count
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithSleep replaces the backoff sleep (primarily for testing)
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// New builds a Client for baseURL. The store is required: it is where the
// bearer token is read from on every request.
func New(baseURL string, store session.Store, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] invalid base URL")
	}
	if store == nil {
		return nil, errors.New("[apiclient.New] session store is required")
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		contentType: defaultContentType,
		timeout:     defaultTimeout,
		loginRoute:  defaultLoginRoute,
		maxRetries:  DefaultMaxRetries,
		store:       store,
		navigator:   LogNavigator(),
		logger:      log.Logger,
		sleep:       sleepContext,
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(c)
	}

	hc := http.Client{}
	if c.httpClient != nil {
		hc = *c.httpClient
	}
	hc.Timeout = c.timeout
	c.httpClient = &hc

	c.doer = Chain(c.httpClient,
		RequestIDMiddleware(),
		AuthMiddleware(c.store, c.logger),
		TimingMiddleware(c.logger),
		ErrorMiddleware(c.store, c.navigator, c.loginRoute, c.logger),
	)
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Store() session.Store {
	return c.store
}

func (c *Client) Navigator() Navigator {
	return c.navigator
}

func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// URL resolves a path against the base URL, for links the caller opens itself
// (camera feeds, log images).
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// Do sends req and decodes a JSON response into out when out is non-nil.
// Failures are *APIError values that have already been classified and logged.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newConnectivityError(resp.Request, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "[Client.Do] decode %s %s response", req.Method, req.Path)
	}
	return nil
}

// DoRaw sends req and returns the response body and its content type, for
// binary endpoints such as the signup QR code and detection images.
func (c *Client) DoRaw(ctx context.Context, req Request) ([]byte, string, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", newConnectivityError(resp.Request, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		apiErr := newSetupError(req.Method, req.Path, err)
		c.logger.Error().Err(err).Str("path", req.Path).Msg("Request Setup Error")
		return nil, apiErr
	}
	return c.doer.Do(httpReq)
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(c.baseURL + req.Path)
	if err != nil {
		return nil, err
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	if req.NoSessionExpiry {
		ctx = context.WithValue(ctx, ContextKeyNoSessionExpiry, true)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", c.contentType)
	for k, values := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		return bytes.NewReader(data), nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
