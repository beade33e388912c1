package backend

import (
	"context"
	"log/slog"
	"sync"

	"tunelingo/internal/domain/activity"
)

// CatalogFetcher is the single call the snapshot needs from the client.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]activity.Activity, error)
}

// Snapshot holds the in-memory catalog for one portal process. The set is
// replaced atomically on refresh so a concurrent read never observes a
// half-updated list, and loads are generation-tagged so a slow, superseded
// load can never overwrite the result of a newer one (last-request-wins).
//
// A failed load degrades to an empty set with LoadFailed reporting true;
// it is never fatal to the page.
type Snapshot struct {
	fetcher CatalogFetcher

	mu         sync.RWMutex
	activities []activity.Activity
	loaded     bool // at least one load has completed (successfully or not)
	loadErr    error
	started    uint64 // generation counter for loads started
	applied    uint64 // generation of the load currently visible
}

// NewSnapshot creates an empty snapshot backed by the given fetcher.
func NewSnapshot(fetcher CatalogFetcher) *Snapshot {
	return &Snapshot{fetcher: fetcher}
}

// Refresh fetches the catalog and installs it. Safe for concurrent use:
// if another Refresh started later and already installed its result, this
// one's result is discarded.
// POST: the visible set reflects the newest completed load
func (s *Snapshot) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	catalog, err := s.fetcher.FetchCatalog(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.applied {
		// A newer load finished first; drop this result.
		slog.Debug("catalog_refresh_superseded", "generation", gen, "applied", s.applied)
		return nil
	}
	s.applied = gen
	s.loaded = true
	if err != nil {
		s.activities = nil
		s.loadErr = err
		slog.Warn("catalog_refresh_failed", "error", err)
		return err
	}
	s.activities = catalog
	s.loadErr = nil
	return nil
}

// Activities returns the current catalog set. The returned slice is shared
// and must be treated as read-only; the filter engine copies, never mutates.
func (s *Snapshot) Activities() []activity.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activities
}

// ByID looks up one activity in the current set.
func (s *Snapshot) ByID(id string) (activity.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.activities {
		if a.ID == id {
			return a, true
		}
	}
	return activity.Activity{}, false
}

// Loaded reports whether at least one load has completed, i.e. whether
// filter results over this snapshot are authoritative.
func (s *Snapshot) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LoadFailed returns the error from the newest completed load, if any.
func (s *Snapshot) LoadFailed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}
