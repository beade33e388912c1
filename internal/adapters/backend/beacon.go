package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tunelingo/internal/domain/beacon"
)

// ForwardBeacon sends a usage event to the backend collector. Beacons
// are best-effort; a failure here is retried by the outbox worker, never
// surfaced to the visitor.
// PRE: event has been validated
// POST: Event is accepted by the collector, or an error for retry
func (c *Client) ForwardBeacon(ctx context.Context, event beacon.Event) error {
	payload, _ := json.Marshal(map[string]string{
		"id":         event.ID,
		"kind":       event.Kind,
		"path":       event.Path,
		"deviceHash": event.DeviceHash,
		"userId":     event.UserID,
		"occurredAt": event.OccurredAt.Format(time.RFC3339),
	})

	req, err := c.newRequest(ctx, http.MethodPost, "/usage-beacons", bytes.NewReader(payload), "")
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
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
