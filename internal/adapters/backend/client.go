// Package backend is the HTTP client for the learning-content API: the
// activity catalog, membership status, favorite lists, access grants and
// share-link validation. The backend is the source of truth for all of
// these; this package only reads and proxies, normalising every failure
// into a typed result before it reaches rendering logic.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"tunelingo/internal/adapters/http/perf"
)

// Sentinel errors for boundary failures.
var (
	ErrUnavailable  = errors.New("content API unavailable")
	ErrUnauthorized = errors.New("content API rejected the credential")
	ErrBadResponse  = errors.New("content API returned a malformed response")
)

// maxBodyBytes caps response bodies read from the backend.
const maxBodyBytes = 4 << 20

// Client talks to the learning-content API. All calls take a context and,
// where the endpoint is authenticated, a bearer token; the client holds no
// per-user state.
type Client struct {
	baseURL  string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[*http.Response]
	observer *perf.Collector
}

// NewClient creates a backend client for the given base URL.
// The circuit breaker opens after a 60% failure rate over at least 10
// requests, measured per minute, and probes again after 2 minutes. Only
// transport-level failures and 5xx responses count as failures — a 403 on
// a grant request is an answer, not an outage.
func NewClient(baseURL string) *Client {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "content-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("content_api_breaker", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cb:      cb,
	}
}

// Instrument feeds per-endpoint call timings to the collector. Safe to
// skip; an uninstrumented client just records nothing.
func (c *Client) Instrument(collector *perf.Collector) {
	c.observer = collector
}

// do executes a request through the circuit breaker. A 5xx status is
// reported to the breaker as a failure but still returned to the caller
// so endpoint-specific mapping can run.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.Observe(perf.Sample{
				Origin: perf.OriginUpstream,
				Label:  req.Method + " " + req.URL.Path,
				Millis: float64(time.Since(start).Microseconds()) / 1000.0,
				At:     start,
			})
		}
	}()

	resp, err := c.cb.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Drain so the connection can be reused, then surface the
			// status as a breaker failure.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			resp.Body.Close()
			return resp, &serverStatusError{status: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		var statusErr *serverStatusError
		if errors.As(err, &statusErr) {
			return nil, statusErr
		}
		slog.Warn("content_api_unreachable", "url", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// newRequest builds a request against the backend, attaching the bearer
// credential when one is held. An empty token proceeds unauthenticated,
// which supports free and shared content.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// serverStatusError carries a 5xx response through the breaker boundary.
type serverStatusError struct {
	status int
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("content API returned status %d", e.status)
}

func (e *serverStatusError) Is(target error) bool {
	return target == ErrUnavailable
}

// readBody reads a capped response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
