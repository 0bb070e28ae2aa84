// Package fakebackend is an in-process stand-in for the MindSight REST API,
// served through httptest in the client and flow tests.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Fault makes the next Count calls to a route fail with Status and Body.
type Fault struct {
	Status int
	Body   any
	Count  int
	// Drop closes the connection instead of answering
	Drop bool
}

type account struct {
	ID           int
	Name         string
	Username     string
	PasswordHash string
	Role         string
	Code         string // The one-time code the authenticator would show right now
	ResetAllowed bool   // Set once the reset code was verified
	LastLogin    *time.Time
}

// Backend holds all fake server state
type Backend struct {
	mu sync.Mutex

	router *mux.Router
	server *httptest.Server
	secret []byte

	accounts     map[string]*account // username -> account
	nextUserID   int
	cameras      map[int]map[string]any
	nextCameraID int
	logs         []map[string]any
	revoked      map[string]bool

	faults   map[string]*Fault   // "METHOD /path" -> fault
	calls    map[string]int      // "METHOD /path" -> count
	requests map[string][]http.Header

	// IssueToken makes verify-totp return a token. Older backends only answered
	// {"message": "Login successful"}.
	IssueToken bool
	TokenTTL   time.Duration
	QRCode     []byte

	// BeforeHandle, when set, runs after a request is recorded and before it
	// is answered. Tests use it to hold a request in flight.
	BeforeHandle func(route string)
}

// New starts the fake backend; it is closed when the test finishes.
func New(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		router:       mux.NewRouter(),
		secret:       []byte("fake-backend-secret"),
		accounts:     make(map[string]*account),
		nextUserID:   1,
		cameras:      make(map[int]map[string]any),
		nextCameraID: 1,
		revoked:      make(map[string]bool),
		faults:       make(map[string]*Fault),
		calls:        make(map[string]int),
		requests:     make(map[string][]http.Header),
		IssueToken:   true,
		TokenTTL:     time.Hour,
		QRCode:       pngQRCode,
	}
	b.initRoutes()
	b.server = httptest.NewServer(b)
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// Close stops the server; later requests fail to connect.
func (b *Backend) Close() {
	b.server.Close()
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Inject registers a fault for "METHOD /path" (the mux route template, e.g.
// "DELETE /api/cameras/delete/{id}").
func (b *Backend) Inject(route string, f Fault) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[route] = &f
}

// Calls returns how many times a route was hit, faults included.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// LastHeaders returns the headers of the latest request to a route.
func (b *Backend) LastHeaders(route string) http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	reqs := b.requests[route]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

// pngQRCode is the 8-byte PNG signature followed by a minimal header chunk;
// enough for clients that only check the content type and magic bytes.
var pngQRCode = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde,
}
