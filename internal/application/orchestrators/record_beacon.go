package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainBeacon "tunelingo/internal/domain/beacon"
	domainOutbox "tunelingo/internal/domain/outbox"
)

// BeaconStoreForRecord persists beacons locally.
type BeaconStoreForRecord interface {
	Save(ctx context.Context, e domainBeacon.Event) error
}

// RecordBeaconInput carries one usage beacon from the client.
type RecordBeaconInput struct {
	Kind       string
	Path       string
	DeviceHash string
	UserID     string // from the session, not the client payload
}

// RecordBeaconDeps holds dependencies for beacon recording.
type RecordBeaconDeps struct {
	Beacons BeaconStoreForRecord
	Outbox  OutboxStoreForSignup
}

// ExecuteRecordBeacon stores a usage beacon and queues its forward to
// the backend collector. Beacons are side effects only: this path never
// influences catalog, entitlement or grant behaviour, and failures are
// swallowed after logging.
// PRE: Kind and Path come from the client; UserID comes from the session
// POST: Event persisted locally; forward queued in the outbox
func ExecuteRecordBeacon(ctx context.Context, input RecordBeaconInput, deps RecordBeaconDeps) error {
	event := domainBeacon.Event{
		ID:         uuid.NewString(),
		Kind:       input.Kind,
		Path:       input.Path,
		DeviceHash: input.DeviceHash,
		UserID:     input.UserID,
		OccurredAt: time.Now().UTC(),
	}
	if err := event.Validate(); err != nil {
		return err
	}

	if err := deps.Beacons.Save(ctx, event); err != nil {
		return fmt.Errorf("failed to save beacon: %w", err)
	}

	payload, _ := json.Marshal(event)
	entry := domainOutbox.Entry{
		ID:         uuid.NewString(),
		ActionType: domainOutbox.ActionTypeBeacon,
		Payload:    string(payload),
		Status:     domainOutbox.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		slog.Error("beacon_event", "event", "forward_enqueue_failed", "beacon_id", event.ID, "error", err)
		return nil
	}

	slog.Debug("beacon_event", "event", "beacon_recorded", "kind", event.Kind, "beacon_id", event.ID)
	return nil
}
