package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scriptedTransport plays back a fixed sequence of responses/errors.
type scriptedTransport struct {
	calls int
	steps []func() (*http.Response, error)
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ix := s.calls
	if ix >= len(s.steps) {
		ix = len(s.steps) - 1
	}
	s.calls++
	return s.steps[ix]()
}

func respond(code int, body string) func() (*http.Response, error) {
	return func() (*http.Response, error) {
		return &http.Response{
			StatusCode: code,
			Status:     http.StatusText(code),
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func fastConfig(rt http.RoundTripper, retries int) Config {
	return Config{
		MaxRetries:     retries,
		InitialBackoff: time.Microsecond,
		MaxBackoff:     time.Microsecond,
		Transport:      rt,
	}
}

func TestOpen_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	rt := &scriptedTransport{steps: []func() (*http.Response, error){
		respond(http.StatusInternalServerError, ""),
		respond(http.StatusTooManyRequests, ""),
		respond(http.StatusOK, "a,b\n1,2\n"),
	}}
	r := NewRemote("http://x.test/d.csv", fastConfig(rt, 3))

	rc, err := r.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("body=%q", data)
	}
	if rt.calls != 3 {
		t.Fatalf("attempts=%d; want 3", rt.calls)
	}
}

func TestOpen_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	rt := &scriptedTransport{steps: []func() (*http.Response, error){
		respond(http.StatusServiceUnavailable, ""),
	}}
	r := NewRemote("http://x.test/d.csv", fastConfig(rt, 2))

	if _, err := r.Open(context.Background()); err == nil {
		t.Fatal("want error after retry exhaustion")
	}
}

// Client errors other than 429 are final; no retry happens.
func TestOpen_NonRetryableStatus(t *testing.T) {
	t.Parallel()

	rt := &scriptedTransport{steps: []func() (*http.Response, error){
		respond(http.StatusNotFound, ""),
		respond(http.StatusOK, "never reached"),
	}}
	r := NewRemote("http://x.test/d.csv", fastConfig(rt, 3))

	if _, err := r.Open(context.Background()); err == nil {
		t.Fatal("want error for 404")
	}
	if rt.calls != 1 {
		t.Fatalf("attempts=%d; want 1 (no retry on 404)", rt.calls)
	}
}

func TestOpen_NetworkErrorRetries(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	rt := &scriptedTransport{steps: []func() (*http.Response, error){
		func() (*http.Response, error) { return nil, boom },
		respond(http.StatusOK, "ok"),
	}}
	r := NewRemote("http://x.test/d.csv", fastConfig(rt, 1))

	rc, err := r.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc.Close()
}

func TestOpen_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRemote("http://x.test/d.csv", fastConfig(&scriptedTransport{steps: []func() (*http.Response, error){respond(200, "")}}, 0))
	if _, err := r.Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v; want context.Canceled", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	initial, max := 100*time.Millisecond, 1*time.Second
	if d := backoffDuration(initial, 0, max); d != 100*time.Millisecond {
		t.Fatalf("attempt 0: %v", d)
	}
	if d := backoffDuration(initial, 2, max); d != 400*time.Millisecond {
		t.Fatalf("attempt 2: %v", d)
	}
	// Clamped at max, including overflow territory.
	if d := backoffDuration(initial, 10, max); d != max {
		t.Fatalf("attempt 10: %v", d)
	}
	if d := backoffDuration(initial, 62, max); d != max {
		t.Fatalf("attempt 62: %v", d)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	for code, want := range map[int]bool{200: false, 404: false, 429: true, 500: true, 503: true, 599: true, 400: false} {
		if got := isRetryableStatus(code); got != want {
			t.Fatalf("isRetryableStatus(%d)=%v; want %v", code, got, want)
		}
	}
}
