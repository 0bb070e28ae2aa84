package apiclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PalashJyoti/mindsight-client/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyStartTime stores when the request entered the pipeline
	ContextKeyStartTime ContextKey = "start_time"
	// ContextKeyNoSessionExpiry marks credential endpoints whose 401s are wrong
	// passwords or codes, not expired sessions
	ContextKeyNoSessionExpiry ContextKey = "no_session_expiry"
)

const (
	HeaderRequestID = "X-Request-ID"

	// maxErrorBody bounds how much of an error response is read for classification
	maxErrorBody = 1 << 20
)

// RequestIDMiddleware stamps every request with an X-Request-ID unless the
// caller already set one.
func RequestIDMiddleware() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) == "" {
				req.Header.Set(HeaderRequestID, uuid.New().String())
			}
			return next.Do(req)
		})
	}
}

// AuthMiddleware attaches "Authorization: Bearer <token>" when the store holds
// a token. With no token the request goes out unauthenticated and the backend
// decides. The store lookup is local and never waits on the network.
func AuthMiddleware(store session.Store, logger zerolog.Logger) Middleware {
	src := session.TokenSource(store)
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			token, err := src.Token()
			if err != nil {
				logger.Err(err).Msg("Failed to read session token")
			}
			if token != nil && token.AccessToken != "" {
				token.SetAuthHeader(req)
			}
			return next.Do(req)
		})
	}
}

// TimingMiddleware records a start time and logs the elapsed time of
// successful responses. The response is passed through untouched.
func TimingMiddleware(logger zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			req = req.WithContext(context.WithValue(req.Context(), ContextKeyStartTime, time.Now()))

			logger.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("request_id", req.Header.Get(HeaderRequestID)).
				Msg("Starting Request")

			resp, err := next.Do(req)
			if err != nil {
				return resp, err
			}

			start, _ := RequestStart(req.Context())
			elapsed := time.Since(start)
			logger.Debug().
				Str("url", req.URL.Path).
				Int("status", resp.StatusCode).
				Dur("duration", elapsed).
				Msgf("Request to %s took %dms", req.URL.Path, elapsed.Milliseconds())
			return resp, nil
		})
	}
}

// RequestStart reports when TimingMiddleware saw the request.
func RequestStart(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(ContextKeyStartTime).(time.Time)
	return start, ok
}

// ErrorMiddleware turns transport failures and non-2xx responses into
// *APIError values, logs them by category and always returns them to the
// caller. The one side effect: a 401 whose message mentions "expired" or
// "invalid" clears the session and navigates to loginRoute.
func ErrorMiddleware(store session.Store, nav Navigator, loginRoute string, logger zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil {
				apiErr := newConnectivityError(req, err)
				logger.Error().
					Err(err).
					Str("url", req.URL.String()).
					Str("method", req.Method).
					Msg("Network Error: No response received from server")
				return nil, apiErr
			}

			if resp.StatusCode < 400 {
				return resp, nil
			}

			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()

			apiErr := newStatusError(req, resp.StatusCode, body)
			logStatusError(logger, apiErr)

			if apiErr.Kind == KindAuthentication && !noSessionExpiry(req.Context()) && sessionExpired(apiErr) {
				if err := store.Clear(); err != nil {
					logger.Err(err).Msg("Failed to clear expired session")
				}
				if nav != nil {
					nav.Navigate(loginRoute)
				}
			}
			return nil, apiErr
		})
	}
}

// sessionExpired reports whether a 401 means the stored token is no longer usable.
func sessionExpired(apiErr *APIError) bool {
	msg := strings.ToLower(authFailureText(apiErr))
	return strings.Contains(msg, "expired") || strings.Contains(msg, "invalid")
}

func authFailureText(apiErr *APIError) string {
	if apiErr.ErrorText != "" {
		return apiErr.ErrorText
	}
	return "Authentication failed"
}

func noSessionExpiry(ctx context.Context) bool {
	v, _ := ctx.Value(ContextKeyNoSessionExpiry).(bool)
	return v
}

func logStatusError(logger zerolog.Logger, e *APIError) {
	switch e.Status {
	case http.StatusBadRequest:
		ev := logger.Error().Str("path", e.Path).Bytes("body", e.Body)
		if len(e.FieldErrors) > 0 {
			ev = ev.Interface("validation_errors", e.FieldErrors)
		}
		ev.Msg("Bad Request")
	case http.StatusUnauthorized:
		logger.Warn().Str("path", e.Path).Msgf("Authentication Error: %s", authFailureText(e))
	case http.StatusForbidden:
		logger.Warn().Str("path", e.Path).Bytes("body", e.Body).Msg("Access Forbidden")
	case http.StatusNotFound:
		logger.Warn().Str("path", e.Path).Msg("Resource Not Found")
	case http.StatusUnprocessableEntity:
		logger.Error().Str("path", e.Path).Bytes("body", e.Body).Msg("Unprocessable Entity")
	case http.StatusTooManyRequests:
		logger.Warn().Str("path", e.Path).Msg("Rate Limit Exceeded. Please try again later.")
	case http.StatusInternalServerError:
		logger.Error().Str("path", e.Path).Bytes("body", e.Body).Msg("Internal Server Error")
	default:
		if e.Kind == KindServer {
			logger.Error().Str("path", e.Path).Int("status", e.Status).Msg("Server Unavailable")
			return
		}
		logger.Error().Str("path", e.Path).Int("status", e.Status).Bytes("body", e.Body).Msgf("HTTP Error %d", e.Status)
	}
}
