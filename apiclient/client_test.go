package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PalashJyoti/mindsight-client/apiclient"
	"github.com/PalashJyoti/mindsight-client/internal/fakebackend"
	"github.com/PalashJyoti/mindsight-client/session"
	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	adminUsername = "meera"
	adminPassword = "s3cret-pass"
	adminCode     = "123456"
	userUsername  = "arjun"
	userPassword  = "another-pass"
	userCode      = "654321"
)

// recorder captures navigations and backoff sleeps
type recorder struct {
	mu     sync.Mutex
	routes []string
	sleeps []time.Duration
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, path)
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recorder) navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

func (r *recorder) delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

type testFixture struct {
	backend *fakebackend.Backend
	store   *session.MemoryStore
	rec     *recorder
	client  *apiclient.Client
	adminID int
	userID  int
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := fakebackend.New(t)
	adminID := backend.AddUser("Meera", adminUsername, adminPassword, "admin", adminCode)
	userID := backend.AddUser("Arjun", userUsername, userPassword, "user", userCode)

	store := session.NewMemoryStore()
	rec := &recorder{}
	client, err := apiclient.New(backend.URL(), store,
		apiclient.WithNavigator(rec),
		apiclient.WithSleep(rec.sleep),
		apiclient.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	return &testFixture{
		backend: backend,
		store:   store,
		rec:     rec,
		client:  client,
		adminID: adminID,
		userID:  userID,
	}
}

// signIn stores a valid token for username and caches the decoded user.
func (f *testFixture) signIn(t *testing.T, username string) string {
	t.Helper()
	token, err := f.backend.TokenFor(username, time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.store.SetToken(token))

	u, err := users.DecodeCurrentUser(token)
	require.NoError(t, err)
	require.NoError(t, f.store.SetUser(u))
	return token
}

func TestNew_Validation(t *testing.T) {
	store := session.NewMemoryStore()

	_, err := apiclient.New("", store)
	require.Error(t, err)

	_, err = apiclient.New("not a url", store)
	require.Error(t, err)

	_, err = apiclient.New("http://127.0.0.1:8080", nil)
	require.Error(t, err)

	c, err := apiclient.New("http://127.0.0.1:8080/", store)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080", c.BaseURL())
	require.Equal(t, apiclient.DefaultMaxRetries, c.MaxRetries())
	require.Equal(t, "http://127.0.0.1:8080/api/camera_feed/4", c.Cameras().FeedURL(4))
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("attaches bearer token when signed in", func(t *testing.T) {
		f := setupTestFixture(t)
		token := f.signIn(t, adminUsername)

		_, err := f.client.Cameras().List(context.Background())
		require.NoError(t, err)

		headers := f.backend.LastHeaders("GET /api/cameras")
		require.Equal(t, "Bearer "+token, headers.Get("Authorization"))
		require.Equal(t, "application/json", headers.Get("Content-Type"))
		_, err = uuid.Parse(headers.Get(apiclient.HeaderRequestID))
		require.NoError(t, err)
	})

	t.Run("sends no authorization header when signed out", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.client.Cameras().List(context.Background())
		require.Error(t, err)
		require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))

		headers := f.backend.LastHeaders("GET /api/cameras")
		require.Empty(t, headers.Get("Authorization"))

		// "Missing Authorization Header" is not an expired session
		require.Empty(t, f.rec.navigations())
	})
}

func TestErrorMiddleware_SessionExpiry(t *testing.T) {
	t.Run("expired token clears session and goes to login", func(t *testing.T) {
		f := setupTestFixture(t)
		expired, err := f.backend.TokenFor(adminUsername, -time.Minute)
		require.NoError(t, err)
		require.NoError(t, f.store.SetToken(expired))
		require.NoError(t, f.store.SetUser(&users.CurrentUser{ID: "1", Role: users.RoleAdmin}))

		_, err = f.client.Cameras().List(context.Background())
		require.Error(t, err)
		require.Equal(t, apiclient.KindAuthentication, apiclient.KindOf(err))

		token, _ := f.store.Token()
		require.Empty(t, token)
		u, _ := f.store.User()
		require.Nil(t, u)
		require.Equal(t, []string{"/login"}, f.rec.navigations())
	})

	t.Run("invalid token clears session and goes to login", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.SetToken("not-a-jwt"))

		_, err := f.client.Logs().List(context.Background())
		require.Error(t, err)

		token, _ := f.store.Token()
		require.Empty(t, token)
		require.Equal(t, []string{"/login"}, f.rec.navigations())
	})

	t.Run("other 401 keeps the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)
		f.backend.Inject("GET /api/cameras", fakebackend.Fault{
			Status: http.StatusUnauthorized,
			Body:   map[string]string{"error": "Token has been revoked"},
			Count:  1,
		})

		_, err := f.client.Cameras().List(context.Background())
		require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))

		token, _ := f.store.Token()
		require.NotEmpty(t, token)
		require.Empty(t, f.rec.navigations())
	})

	t.Run("401 without a body falls back to authentication failed", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)
		f.backend.Inject("GET /api/cameras", fakebackend.Fault{Status: http.StatusUnauthorized, Count: 1})

		_, err := f.client.Cameras().List(context.Background())
		require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))

		token, _ := f.store.Token()
		require.NotEmpty(t, token)
		require.Empty(t, f.rec.navigations())
	})

	t.Run("wrong password does not end the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)
		f.backend.Inject("POST /api/auth/login", fakebackend.Fault{
			Status: http.StatusUnauthorized,
			Body:   map[string]string{"error": "Invalid credentials"},
			Count:  1,
		})

		_, err := f.client.Auth().Login(context.Background(), adminUsername, "wrong")
		require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))

		token, _ := f.store.Token()
		require.NotEmpty(t, token)
		require.Empty(t, f.rec.navigations())
	})

	t.Run("403 is reported without side effects", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, userUsername)

		_, err := f.client.Cameras().Add(context.Background(), "Lobby", "10.0.0.5", "rtsp://10.0.0.5/stream")
		require.Equal(t, apiclient.KindAuthorization, apiclient.KindOf(err))
		require.Equal(t, "You don't have permission to perform this action.", apiclient.Message(err))

		token, _ := f.store.Token()
		require.NotEmpty(t, token)
		require.Empty(t, f.rec.navigations())
	})
}

func TestErrorMiddleware_Classification(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, adminUsername)

	cases := []struct {
		status int
		kind   apiclient.Kind
	}{
		{http.StatusBadRequest, apiclient.KindValidation},
		{http.StatusNotFound, apiclient.KindNotFound},
		{http.StatusConflict, apiclient.KindConflict},
		{http.StatusUnprocessableEntity, apiclient.KindSemantic},
		{http.StatusTooManyRequests, apiclient.KindRateLimit},
		{http.StatusInternalServerError, apiclient.KindServer},
		{http.StatusServiceUnavailable, apiclient.KindServer},
		{http.StatusTeapot, apiclient.KindUnknown},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			f.backend.Inject("GET /api/detection_logs", fakebackend.Fault{
				Status: tc.status,
				Body:   map[string]string{"error": "boom", "message": "details"},
				Count:  1,
			})

			_, err := f.client.Logs().List(context.Background())
			apiErr, ok := apiclient.AsAPIError(err)
			require.True(t, ok)
			require.Equal(t, tc.kind, apiErr.Kind)
			require.Equal(t, tc.status, apiErr.Status)
			require.Equal(t, "boom", apiErr.ServerMessage())
			require.Equal(t, "details", apiErr.MessageText)
			require.Equal(t, "/api/detection_logs", apiErr.Path)
		})
	}
}

func TestErrorMiddleware_Connectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	rec := &recorder{}
	c, err := apiclient.New(baseURL, session.NewMemoryStore(),
		apiclient.WithNavigator(rec),
		apiclient.WithLogger(zerolog.Nop()),
		apiclient.WithTimeout(2*time.Second),
	)
	require.NoError(t, err)

	_, err = c.Cameras().List(context.Background())
	require.Error(t, err)
	require.Equal(t, apiclient.KindConnectivity, apiclient.KindOf(err))
	require.Zero(t, apiclient.StatusCode(err))
	require.True(t, apiclient.IsRetryable(err))
	require.Equal(t, "Network error. Please check your internet connection.", apiclient.Message(err))
	require.Empty(t, rec.navigations())
}

func TestDo_SetupError(t *testing.T) {
	f := setupTestFixture(t)

	err := f.client.Do(context.Background(), apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/cameras/add",
		Body:   map[string]any{"bad": make(chan int)},
	}, nil)
	require.Equal(t, apiclient.KindSetup, apiclient.KindOf(err))
	require.False(t, apiclient.IsRetryable(err))
	require.Zero(t, f.backend.Calls("POST /api/cameras/add"))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) apiclient.Middleware {
		return func(next apiclient.Doer) apiclient.Doer {
			return apiclient.DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}
	base := apiclient.DoerFunc(func(req *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	require.NoError(t, err)
	_, err = apiclient.Chain(base, mw("first"), mw("second")).Do(req)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "base"}, order)
}

func TestTimingMiddleware_StampsStart(t *testing.T) {
	var (
		start time.Time
		ok    bool
	)
	base := apiclient.DoerFunc(func(req *http.Request) (*http.Response, error) {
		start, ok = apiclient.RequestStart(req.Context())
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/api/cameras", nil)
	require.NoError(t, err)

	before := time.Now()
	_, err = apiclient.TimingMiddleware(zerolog.Nop())(base).Do(req)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, start.Before(before))

	_, ok = apiclient.RequestStart(context.Background())
	require.False(t, ok)
}

func TestNew_DoesNotModifyCallerHTTPClient(t *testing.T) {
	hc := &http.Client{}
	c, err := apiclient.New("http://127.0.0.1:8080", session.NewMemoryStore(),
		apiclient.WithHTTPClient(hc),
		apiclient.WithTimeout(5*time.Second),
	)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Zero(t, hc.Timeout)
}
