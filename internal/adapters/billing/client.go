// Package billing proxies checkout and billing-portal session creation to
// the subscription backend. The backend owns the payment-provider
// integration; the portal only forwards the member's token and receives a
// redirect URL, so no payment credentials live in this process.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrUnavailable reports that the backend could not create a session.
	ErrUnavailable = errors.New("billing: backend unavailable")
	// ErrUnauthorized reports a rejected member token.
	ErrUnauthorized = errors.New("billing: unauthorized")
	// ErrBadResponse reports an undecodable backend response.
	ErrBadResponse = errors.New("billing: bad response")
)

// Client creates checkout and portal sessions via the backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateCheckoutSession asks the backend for a hosted checkout URL.
// PRE: plan is a known plan identifier, token identifies the member
// POST: Returns a URL the browser should be redirected to
func (c *Client) CreateCheckoutSession(ctx context.Context, token, plan, successURL, cancelURL string) (string, error) {
	payload := map[string]string{
		"plan":       plan,
		"successUrl": successURL,
		"cancelUrl":  cancelURL,
	}
	url, err := c.post(ctx, "/billing/checkout-session", token, payload)
	if err != nil {
		return "", err
	}
	slog.Info("billing_event", "event", "checkout_session_created", "plan", plan)
	return url, nil
}

// PortalURL asks the backend for a hosted billing-portal URL where the
// member can change or cancel their subscription.
// PRE: token identifies an authenticated member
func (c *Client) PortalURL(ctx context.Context, token, returnURL string) (string, error) {
	url, err := c.post(ctx, "/billing/portal-session", token, map[string]string{"returnUrl": returnURL})
	if err != nil {
		return "", err
	}
	slog.Info("billing_event", "event", "portal_session_created")
	return url, nil
}

// post sends a session-creation request and decodes the redirect URL.
func (c *Client) post(ctx context.Context, path, token string, payload map[string]string) (string, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("billing_event", "event", "transport_error", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		slog.Warn("billing_event", "event", "session_rejected", "path", path, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil || decoded.URL == "" {
		return "", fmt.Errorf("%w: missing url", ErrBadResponse)
	}
	return decoded.URL, nil
}
