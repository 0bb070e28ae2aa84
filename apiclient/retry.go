package apiclient

import (
	"context"
	"errors"
	"io"
	"time"
)

// MaxBackoff caps the delay between attempts.
const MaxBackoff = 10 * time.Minute

// Backoff is the delay before retry number attempt (0-based): 1s, 2s, 4s...
// up to MaxBackoff.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 30 {
		return MaxBackoff
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > MaxBackoff {
		return MaxBackoff
	}
	return d
}

// Retryer repeats a request after connectivity failures and 5xx responses,
// waiting Backoff(attempt) between tries. 4xx failures are returned at once.
type Retryer struct {
	client     *Client
	maxRetries int
}

// NewRetryer bounds retries at maxRetries; a negative value uses the
// client's default (3 unless configured).
func NewRetryer(client *Client, maxRetries int) *Retryer {
	if maxRetries < 0 {
		maxRetries = client.maxRetries
	}
	return &Retryer{client: client, maxRetries: maxRetries}
}

func (r *Retryer) Do(ctx context.Context, req Request, out any) error {
	req, err := replayable(req)
	if err != nil {
		return err
	}
	return r.client.retry(ctx, r.maxRetries, req, func(ctx context.Context) error {
		return r.client.Do(ctx, req, out)
	})
}

func (r *Retryer) DoRaw(ctx context.Context, req Request) ([]byte, string, error) {
	req, err := replayable(req)
	if err != nil {
		return nil, "", err
	}

	var (
		body        []byte
		contentType string
	)
	err = r.client.retry(ctx, r.maxRetries, req, func(ctx context.Context) error {
		var err error
		body, contentType, err = r.client.DoRaw(ctx, req)
		return err
	})
	return body, contentType, err
}

// replayable reads a streamed body once so every attempt sends the same bytes.
func replayable(req Request) (Request, error) {
	reader, ok := req.Body.(io.Reader)
	if !ok {
		return req, nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return req, newSetupError(req.Method, req.Path, err)
	}
	req.Body = data
	return req, nil
}

// DoWithRetry is Do with up to maxRetries further attempts.
func (c *Client) DoWithRetry(ctx context.Context, req Request, out any, maxRetries int) error {
	return NewRetryer(c, maxRetries).Do(ctx, req, out)
}

func (c *Client) retry(ctx context.Context, maxRetries int, req Request, call func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = call(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == maxRetries {
			return lastErr
		}

		delay := Backoff(attempt)
		c.logger.Warn().
			Err(lastErr).
			Str("path", req.Path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying request")

		if err := c.sleep(ctx, delay); err != nil {
			return errors.Join(err, lastErr)
		}
	}
	return lastErr
}
