package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// CatalogRefresher reloads the catalog snapshot from the backend.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// ExecuteCatalogRefresh triggers a catalog reload. Used by the admin
// surface after backend content changes and by the periodic refresher.
// POST: Snapshot is replaced on success; on failure the snapshot is
// emptied and marked degraded
func ExecuteCatalogRefresh(ctx context.Context, refresher CatalogRefresher) error {
	start := time.Now()
	if err := refresher.Refresh(ctx); err != nil {
		slog.Warn("catalog_event", "event", "refresh_failed", "error", err)
		return err
	}
	slog.Info("catalog_event", "event", "refreshed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// StartCatalogRefresher refreshes the catalog on an interval until the
// stop channel closes. A failed refresh leaves the snapshot empty and
// degraded until the next attempt succeeds.
// PRE: interval > 0
func StartCatalogRefresher(refresher CatalogRefresher, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				_ = ExecuteCatalogRefresh(ctx, refresher)
				cancel()
			case <-stopCh:
				return
			}
		}
	}()
}
