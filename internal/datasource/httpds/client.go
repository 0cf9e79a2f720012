// Package httpds fetches remote CSV extracts over HTTP with retry and
// backoff. It backs the ingest path for datasets whose extracts are pulled
// straight from an open-data portal instead of a local directory.
package httpds

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config configures the HTTP client. Zero values get defaults: 60s timeout,
// 200ms initial backoff capped at 5s.
type Config struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request;
	// zero disables retries.
	MaxRetries int

	// InitialBackoff is the wait before the first retry; each retry doubles
	// it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// UserAgent overrides the request User-Agent header.
	UserAgent string

	// Transport is an optional custom RoundTripper, injected by tests.
	Transport http.RoundTripper
}

// Client is an http.Client wrapped with retry and backoff. Responses with a
// transient status (429 and 5xx) are retried; everything else is final.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	userAgent      string
}

// NewClient constructs a Client, applying defaults for zero config values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "nycetl"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		userAgent:      cfg.UserAgent,
	}
}

// Get fetches url, retrying transient failures. The caller must close the
// response body. A non-2xx final status is returned as an error.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			// transport-level failure, retryable
			lastErr = err
		case retryableStatus(resp.StatusCode):
			resp.Body.Close()
			lastErr = fmt.Errorf("httpds: status %d from GET %s", resp.StatusCode, url)
		case resp.StatusCode >= 300:
			resp.Body.Close()
			return nil, fmt.Errorf("httpds: status %d from GET %s", resp.StatusCode, url)
		default:
			return resp, nil
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := wait(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// retryableStatus reports whether a status should trigger a retry. 5xx and
// 429 are transient; everything else is final.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoffDuration returns initial doubled per retry attempt, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

// wait sleeps for d, aborting early on context cancellation.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
