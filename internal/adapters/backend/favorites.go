package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tunelingo/internal/domain/favorites"
)

// FetchLists retrieves all favorite lists owned by the token's user.
// PRE: token is non-empty
// POST: Returns the user's lists, or an error (never partial results)
func (c *Client) FetchLists(ctx context.Context, token string) ([]favorites.List, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/favorite-lists", nil, token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Lists []struct {
			ID          string   `json:"id"`
			Name        string   `json:"name"`
			ActivityIDs []string `json:"activityIds"`
		} `json:"lists"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	lists := make([]favorites.List, 0, len(payload.Lists))
	for _, l := range payload.Lists {
		lists = append(lists, favorites.List{ID: l.ID, Name: l.Name, ActivityIDs: l.ActivityIDs})
	}
	return lists, nil
}

// CreateList creates a new, empty favorite list and returns its ID.
// PRE: name has been validated
// POST: The list exists server-side
func (c *Client) CreateList(ctx context.Context, token, name string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{"name": name})
	req, err := c.newRequest(ctx, http.MethodPost, "/favorite-lists", bytes.NewReader(reqBody), token)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		ListID string `json:"listId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ListID == "" {
		return "", fmt.Errorf("%w: missing listId", ErrBadResponse)
	}
	return payload.ListID, nil
}

// AddToList adds an activity to a list. Adding an activity the list
// already contains is reported as AlreadyPresent, distinct from genuine
// failure, so the UI can show a non-error message.
// PRE: listID and activityID are non-empty
// POST: The activity is a member of the list exactly once
func (c *Client) AddToList(ctx context.Context, token, listID, activityID string) (favorites.AddOutcome, error) {
	reqBody, _ := json.Marshal(map[string]string{"activityId": activityID})
	path := "/favorite-lists/" + url.PathEscape(listID) + "/activities"
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(reqBody), token)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return favorites.Added, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	}

	// The backend signals a duplicate add inside the error body.
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil &&
		strings.Contains(strings.ToLower(payload.Error), "already in list") {
		return favorites.AlreadyPresent, nil
	}
	return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
}

// RemoveFromList removes an activity from a single list.
// PRE: listID and activityID are non-empty
// POST: The activity is no longer a member of the list
func (c *Client) RemoveFromList(ctx context.Context, token, listID, activityID string) error {
	path := "/favorite-lists/" + url.PathEscape(listID) + "/activities/" + url.PathEscape(activityID)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, token)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if _, err := readBody(resp); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
