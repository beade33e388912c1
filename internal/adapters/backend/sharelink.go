package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"tunelingo/internal/domain/sharelink"
)

// ValidateShareCode checks an anonymous share code against the backend.
// On success the returned reason is empty. Invalid, expired and
// rate-limited codes come back as distinct reasons so each maps to a
// distinct user-facing message; transport and decode failures are
// server_error.
func (c *Client) ValidateShareCode(ctx context.Context, code string) (sharelink.Summary, sharelink.InvalidReason) {
	if code == "" {
		return sharelink.Summary{}, sharelink.ReasonNotFound
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/validate-share-link?code="+url.QueryEscape(code), nil, "")
	if err != nil {
		return sharelink.Summary{}, sharelink.ReasonServerError
	}

	resp, err := c.do(req)
	if err != nil {
		return sharelink.Summary{}, sharelink.ReasonServerError
	}
	body, err := readBody(resp)
	if err != nil {
		return sharelink.Summary{}, sharelink.ReasonServerError
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return sharelink.Summary{}, sharelink.ReasonNotFound
	case http.StatusGone:
		return sharelink.Summary{}, sharelink.ReasonExpired
	case http.StatusTooManyRequests:
		return sharelink.Summary{}, sharelink.ReasonRateLimited
	default:
		return sharelink.Summary{}, sharelink.ReasonServerError
	}

	var payload struct {
		ActivityID    string `json:"activityId"`
		ActivityTitle string `json:"activityTitle"`
		Thumbnail     string `json:"thumbnail"`
		ExpiresAt     string `json:"expiresAt"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ActivityID == "" {
		slog.Warn("share_link_decode_failed", "code", code, "error", err)
		return sharelink.Summary{}, sharelink.ReasonServerError
	}

	summary := sharelink.Summary{
		Code:          code,
		ActivityID:    payload.ActivityID,
		ActivityTitle: payload.ActivityTitle,
		Thumbnail:     payload.Thumbnail,
	}
	if payload.ExpiresAt != "" {
		if ts, err := time.Parse(time.RFC3339, payload.ExpiresAt); err == nil {
			summary.ExpiresAt = ts
		}
	}
	return summary, ""
}
