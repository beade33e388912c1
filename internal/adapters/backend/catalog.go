package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tunelingo/internal/domain/activity"
)

// activityPayload is the backend's wire shape for one activity.
type activityPayload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Genre       string   `json:"genre"`
	Free        bool     `json:"free"`
	Locator     string   `json:"locator"`
	Thumbnail   string   `json:"thumbnail"`
	Duration    int      `json:"duration"`
	Difficulty  string   `json:"difficulty"`
	CreatedAt   string   `json:"createdAt"`
}

// FetchCatalog retrieves the full activity catalog in one call.
// PRE: ctx is valid
// POST: Returns the decoded catalog, or an error (no partial results)
func (c *Client) FetchCatalog(ctx context.Context) ([]activity.Activity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/activities", nil, "")
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
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Activities []activityPayload `json:"activities"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	catalog := make([]activity.Activity, 0, len(payload.Activities))
	for _, p := range payload.Activities {
		a := activity.Activity{
			ID:          p.ID,
			Title:       p.Title,
			Artist:      p.Artist,
			Description: p.Description,
			Tags:        p.Tags,
			Category:    p.Category,
			Genre:       p.Genre,
			Free:        p.Free,
			Locator:     p.Locator,
			Thumbnail:   p.Thumbnail,
			Duration:    p.Duration,
			Difficulty:  p.Difficulty,
		}
		if p.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
				a.CreatedAt = ts
			}
		}
		catalog = append(catalog, a)
	}

	slog.Info("catalog_fetched", "count", len(catalog))
	return catalog, nil
}
