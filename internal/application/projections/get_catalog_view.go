package projections

import (
	"context"

	"tunelingo/internal/domain/activity"
	"tunelingo/internal/domain/entitlement"
)

// GetCatalogViewQuery carries query parameters.
type GetCatalogViewQuery struct {
	Filter  activity.FilterState
	Session entitlement.Session
}

// CatalogItem is one activity annotated with the viewer's right to open it.
type CatalogItem struct {
	Activity activity.Activity
	Decision entitlement.Decision
}

// GetCatalogViewResult carries the query result.
type GetCatalogViewResult struct {
	Items      []CatalogItem
	Total      int  // catalog size before filtering
	Loaded     bool // false until the first backend load completes
	Degraded   bool // newest load failed; the set shown may be empty or stale
	Categories []string
	Genres     []string
}

// GetCatalogViewDeps holds dependencies for GetCatalogView.
type GetCatalogViewDeps struct {
	Catalog CatalogSource
}

// QueryGetCatalogView applies the viewer's filter to the catalog snapshot
// and annotates every remaining activity with an entitlement decision.
// PRE: query.Filter may come straight from untrusted query parameters
// POST: Items reflect the filter; each carries the decision for this session
// INVARIANT: the snapshot is never mutated
func QueryGetCatalogView(ctx context.Context, query GetCatalogViewQuery, deps GetCatalogViewDeps) (GetCatalogViewResult, error) {
	catalog := deps.Catalog.Activities()

	filtered := activity.Apply(catalog, query.Filter)

	items := make([]CatalogItem, 0, len(filtered))
	for _, a := range filtered {
		items = append(items, CatalogItem{
			Activity: a,
			Decision: entitlement.Resolve(a, query.Session),
		})
	}

	return GetCatalogViewResult{
		Items:      items,
		Total:      len(catalog),
		Loaded:     deps.Catalog.Loaded(),
		Degraded:   deps.Catalog.LoadFailed() != nil,
		Categories: activity.ValidCategories,
		Genres:     activity.ValidGenres,
	}, nil
}
