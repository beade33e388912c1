package projections

import (
	"context"
	"time"

	"tunelingo/internal/adapters/storage/newsletter"
	domainActivity "tunelingo/internal/domain/activity"
	domainNewsletter "tunelingo/internal/domain/newsletter"
	domainOutbox "tunelingo/internal/domain/outbox"
)

// CatalogSource is the read side of the in-memory catalog snapshot.
type CatalogSource interface {
	Activities() []domainActivity.Activity
	ByID(id string) (domainActivity.Activity, bool)
	Loaded() bool
	LoadFailed() error
}

// NewsletterStore interface for subscriber queries.
type NewsletterStore interface {
	List(ctx context.Context, filter newsletter.ListFilter) ([]domainNewsletter.Subscriber, error)
	Count(ctx context.Context, status string) (int, error)
}

// OutboxStore interface for outbox queries.
type OutboxStore interface {
	ListPending(ctx context.Context, limit int) ([]domainOutbox.Entry, error)
	ListFailed(ctx context.Context, limit int) ([]domainOutbox.Entry, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// BeaconStore interface for usage queries.
type BeaconStore interface {
	CountSince(ctx context.Context, kind string, since time.Time) (int, error)
}
