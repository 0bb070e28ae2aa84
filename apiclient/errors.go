package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category of a backend call
type Kind int

const (
	KindUnknown        Kind = iota // Any other status
	KindSetup                      // The request could not be built
	KindConnectivity               // No response: network error or timeout
	KindValidation                 // 400
	KindAuthentication             // 401
	KindAuthorization              // 403
	KindNotFound                   // 404
	KindConflict                   // 409
	KindSemantic                   // 422
	KindRateLimit                  // 429
	KindServer                     // 5xx
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindSetup:          "request setup",
	KindConnectivity:   "connectivity",
	KindValidation:     "validation",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindNotFound:       "not found",
	KindConflict:       "conflict",
	KindSemantic:       "semantic validation",
	KindRateLimit:      "rate limit",
	KindServer:         "server",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ClassifyStatus maps an HTTP status to its failure Kind.
func ClassifyStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusUnprocessableEntity:
		return KindSemantic
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500 && status < 600:
		return KindServer
	default:
		return KindUnknown
	}
}

// APIError is returned for every failed backend call. It keeps the server's
// error body so callers can show its text.
type APIError struct {
	Kind   Kind
	Status int    // 0 when no response was received
	Method string
	Path   string

	// From the JSON error body, when present
	ErrorText   string         // "error" field
	MessageText string         // "message" field
	FieldErrors map[string]any // "errors" field

	Body []byte
	Err  error // Underlying transport or setup error
}

// errorBody is the shape of the backend's JSON error responses
type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Errors  map[string]any `json:"errors"`
}

func newStatusError(req *http.Request, status int, body []byte) *APIError {
	e := &APIError{
		Kind:   ClassifyStatus(status),
		Status: status,
		Body:   body,
	}
	if req != nil {
		e.Method = req.Method
		e.Path = req.URL.Path
	}

	var parsed errorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		e.ErrorText = parsed.Error
		e.MessageText = parsed.Message
		e.FieldErrors = parsed.Errors
	}
	return e
}

func newConnectivityError(req *http.Request, err error) *APIError {
	e := &APIError{Kind: KindConnectivity, Err: err}
	if req != nil {
		e.Method = req.Method
		e.Path = req.URL.Path
	}
	return e
}

func newSetupError(method, path string, err error) *APIError {
	return &APIError{Kind: KindSetup, Method: method, Path: path, Err: err}
}

func (e *APIError) Error() string {
	prefix := e.Method + " " + e.Path
	switch e.Kind {
	case KindConnectivity:
		return fmt.Sprintf("%s: no response from server: %v", prefix, e.Err)
	case KindSetup:
		return fmt.Sprintf("%s: request setup: %v", prefix, e.Err)
	}
	if text := e.ServerMessage(); text != "" {
		return fmt.Sprintf("%s: %d %s: %s", prefix, e.Status, http.StatusText(e.Status), text)
	}
	return fmt.Sprintf("%s: %d %s", prefix, e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the server's "error" text, falling back to "message".
func (e *APIError) ServerMessage() string {
	if e.ErrorText != "" {
		return e.ErrorText
	}
	return e.MessageText
}

// Retryable reports whether repeating the request could succeed:
// only connectivity failures and 5xx responses qualify.
func (e *APIError) Retryable() bool {
	return e.Kind == KindConnectivity || e.Kind == KindServer
}

// AsAPIError finds the *APIError in err's chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is a connectivity or server failure
func IsRetryable(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Retryable()
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// KindOf returns the failure Kind carried by err, KindUnknown otherwise
func KindOf(err error) Kind {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}
