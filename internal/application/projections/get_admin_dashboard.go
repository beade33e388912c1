package projections

import (
	"context"
	"time"

	"tunelingo/internal/domain/beacon"
	"tunelingo/internal/domain/newsletter"
	"tunelingo/internal/domain/outbox"
)

// GetAdminDashboardDeps holds dependencies for the admin dashboard projection.
type GetAdminDashboardDeps struct {
	Catalog    CatalogSource
	Newsletter NewsletterStore
	Outbox     OutboxStore
	Beacons    BeaconStore // optional: nil skips usage counts
}

// AdminDashboardResult carries the output of the admin dashboard projection.
type AdminDashboardResult struct {
	CatalogSize     int
	CatalogLoaded   bool
	CatalogDegraded bool

	Subscribers   int // currently subscribed
	Unsubscribed  int
	OutboxPending int
	OutboxFailed  int

	// Usage over the trailing seven days.
	PageViews      int
	ActivityStarts int
}

// QueryGetAdminDashboard aggregates the counters shown on the admin home
// screen. Every lookup is best-effort: a failing store zeroes its counter
// instead of failing the page.
func QueryGetAdminDashboard(ctx context.Context, deps GetAdminDashboardDeps, now time.Time) (AdminDashboardResult, error) {
	result := AdminDashboardResult{
		CatalogSize:     len(deps.Catalog.Activities()),
		CatalogLoaded:   deps.Catalog.Loaded(),
		CatalogDegraded: deps.Catalog.LoadFailed() != nil,
	}

	if count, err := deps.Newsletter.Count(ctx, newsletter.StatusSubscribed); err == nil {
		result.Subscribers = count
	}
	if count, err := deps.Newsletter.Count(ctx, newsletter.StatusUnsubscribed); err == nil {
		result.Unsubscribed = count
	}

	if counts, err := deps.Outbox.CountByStatus(ctx); err == nil {
		result.OutboxPending = counts[outbox.StatusPending] + counts[outbox.StatusRetrying]
		result.OutboxFailed = counts[outbox.StatusFailed]
	}

	if deps.Beacons != nil {
		weekAgo := now.Add(-7 * 24 * time.Hour)
		if count, err := deps.Beacons.CountSince(ctx, beacon.KindPageView, weekAgo); err == nil {
			result.PageViews = count
		}
		if count, err := deps.Beacons.CountSince(ctx, beacon.KindActivityStart, weekAgo); err == nil {
			result.ActivityStarts = count
		}
	}

	return result, nil
}
