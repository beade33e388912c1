package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// MembershipStatus returns whether the bearer of the given token holds an
// active subscription. This is the portal's only source of subscription
// truth; the result is stored on the session and re-fetched on demand,
// never derived locally.
// PRE: token is non-empty
// POST: Returns the active flag, or an error for auth/transport failures
func (c *Client) MembershipStatus(ctx context.Context, token string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/members/status", nil, token)
	if err != nil {
		return false, err
	}

	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	body, err := readBody(resp)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, ErrUnauthorized
	default:
		return false, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Active bool `json:"active"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return payload.Active, nil
}
