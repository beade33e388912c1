package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"tunelingo/internal/domain/grant"
)

// RequestGrant asks the backend to mint a short-lived, signed URL for the
// activity identified by its content locator, attaching the bearer
// credential when one is held. The result is always a typed AccessGrant —
// network failures, non-2xx statuses and malformed bodies are mapped to
// failure reasons, never raised past this boundary, so the caller can
// route the user deterministically.
//
// The portal performs no URL construction or signing of its own: a
// successful grant is a pure pass-through of the backend-issued locator,
// and any Set-Cookie headers are carried verbatim for the HTTP layer to
// forward.
func (c *Client) RequestGrant(ctx context.Context, locator, token string) grant.AccessGrant {
	req, err := c.newRequest(ctx, http.MethodGet, "/grant-access?prefix="+url.QueryEscape(locator), nil, token)
	if err != nil {
		return grant.Failure(grant.ReasonServerError)
	}

	resp, err := c.do(req)
	if err != nil {
		return grant.Failure(grant.ReasonServerError)
	}
	cookies := resp.Header.Values("Set-Cookie")
	body, err := readBody(resp)
	if err != nil {
		return grant.Failure(grant.ReasonServerError)
	}

	var payload struct {
		Success     bool   `json:"success"`
		ActivityURL string `json:"activityUrl"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("grant_decode_failed", "status", resp.StatusCode, "error", err)
		return grant.Failure(grant.ReasonServerError)
	}

	if resp.StatusCode != http.StatusOK || !payload.Success || payload.ActivityURL == "" {
		return grant.Failure(failureReason(resp.StatusCode, payload.Error))
	}

	slog.Info("grant_issued", "locator", locator, "authenticated", token != "")
	return grant.AccessGrant{
		Success:     true,
		ActivityURL: payload.ActivityURL,
		SetCookies:  cookies,
	}
}

// failureReason maps a backend error string (preferred) or HTTP status to
// a typed reason. Anything unrecognised is access_denied for client-class
// statuses and server_error otherwise.
func failureReason(status int, backendErr string) grant.FailureReason {
	switch backendErr {
	case string(grant.ReasonAuthenticationRequired):
		return grant.ReasonAuthenticationRequired
	case string(grant.ReasonSubscriptionRequired):
		return grant.ReasonSubscriptionRequired
	case string(grant.ReasonAccessDenied):
		return grant.ReasonAccessDenied
	}
	switch status {
	case http.StatusUnauthorized:
		return grant.ReasonAuthenticationRequired
	case http.StatusPaymentRequired:
		return grant.ReasonSubscriptionRequired
	case http.StatusForbidden, http.StatusNotFound:
		return grant.ReasonAccessDenied
	case http.StatusOK:
		// 200 with success=false or a missing URL is a malformed answer.
		return grant.ReasonServerError
	default:
		return grant.ReasonServerError
	}
}
