package beacon

import (
	"errors"
	"time"
)

// Event kinds the portal records.
const (
	KindPageView      = "page_view"
	KindActivityStart = "activity_start"
	KindDevice        = "device"
)

// ValidKinds contains all valid event kinds.
var ValidKinds = []string{KindPageView, KindActivityStart, KindDevice}

// ErrInvalidKind is returned for unrecognised event kinds.
var ErrInvalidKind = errors.New("beacon kind must be one of: page_view, activity_start, device")

// Event is a fire-and-forget usage beacon. It is recorded as an
// independent side effect and never consulted by any access decision.
type Event struct {
	ID         string
	Kind       string
	Path       string // page path or activity id, depending on kind
	DeviceHash string // opaque client-supplied hash; never interpreted
	UserID     string // empty for anonymous visitors
	OccurredAt time.Time
}

// Validate checks if the Event has valid data.
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	valid := false
	for _, k := range ValidKinds {
		if e.Kind == k {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidKind
	}
	if e.OccurredAt.IsZero() {
		return errors.New("occurred_at must be set")
	}
	return nil
}
