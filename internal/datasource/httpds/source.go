// Package httpds implements an HTTP-backed data source with retry/backoff on
// transient failures, so ingestions can pull published CSV exports directly
// from a URL. Retries apply only to establishing the response; once the body
// stream is handed to the pipeline, a mid-stream failure is a fatal
// input-access error like any other read failure.
package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the HTTP data source. Zero values are given defaults:
// Timeout 30s applies to headers only (the body may stream longer),
// MaxRetries 3, InitialBackoff 200ms, MaxBackoff 5s.
type Config struct {
	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int

	// InitialBackoff is the backoff before the first retry; each subsequent
	// retry doubles it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Timeout bounds how long to wait for response headers.
	Timeout time.Duration

	// Transport is an optional custom RoundTripper for tests.
	Transport http.RoundTripper
}

// Remote is an HTTP data source bound to one URL.
type Remote struct {
	url            string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewRemote returns a Remote data source for url, applying defaults for zero
// Config values.
func NewRemote(url string, cfg Config) *Remote {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{ResponseHeaderTimeout: cfg.Timeout}
	}
	return &Remote{
		url:            url,
		client:         &http.Client{Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}
}

// Open issues a GET for the configured URL, retrying transient failures with
// exponential backoff, and returns the response body for streaming. The
// caller owns closing it.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	if r.url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	attempts := r.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}

		resp, err := r.client.Do(req)
		switch {
		case err != nil:
			// Network or transport-level error; retryable.
			lastErr = err
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case isRetryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: retryable status %d from %s", resp.StatusCode, r.url)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("httpds: fetch %s: %s", r.url, resp.Status)
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := sleepWithContext(ctx, backoffDuration(r.initialBackoff, attempt, r.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// isRetryableStatus is intentionally conservative: 5xx and 429 are transient,
// everything else is final.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns the exponential backoff for the given 0-based retry
// index, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
