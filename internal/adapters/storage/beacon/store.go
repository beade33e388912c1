package beacon

import (
	"context"
	"time"

	domain "tunelingo/internal/domain/beacon"
)

// Store persists usage beacon events.
type Store interface {
	Save(ctx context.Context, value domain.Event) error
	ListByKind(ctx context.Context, kind string, limit int) ([]domain.Event, error)
	CountSince(ctx context.Context, kind string, since time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
