package projections

import (
	"context"

	"tunelingo/internal/domain/entitlement"
	"tunelingo/internal/domain/favorites"
)

// FavoritesSource fetches the viewer's lists from the backend.
type FavoritesSource interface {
	FetchLists(ctx context.Context, token string) ([]favorites.List, error)
}

// GetFavoritesViewQuery carries query parameters.
type GetFavoritesViewQuery struct {
	Token   string
	Session entitlement.Session
}

// FavoritesListView is one list resolved against the catalog snapshot.
type FavoritesListView struct {
	ID      string
	Name    string
	Items   []CatalogItem
	Missing int // saved activities no longer present in the catalog
}

// GetFavoritesViewResult carries the query result.
type GetFavoritesViewResult struct {
	Lists []FavoritesListView
}

// GetFavoritesViewDeps holds dependencies for GetFavoritesView.
type GetFavoritesViewDeps struct {
	Favorites FavoritesSource
	Catalog   CatalogSource
}

// QueryGetFavoritesView fetches the viewer's lists and resolves every saved
// activity identifier against the current catalog snapshot. Identifiers the
// catalog no longer carries are counted but not shown; they are kept in the
// backend list so a later catalog refresh can restore them.
// PRE: query.Token belongs to an authenticated member
// POST: each visible item carries the entitlement decision for this session
func QueryGetFavoritesView(ctx context.Context, query GetFavoritesViewQuery, deps GetFavoritesViewDeps) (GetFavoritesViewResult, error) {
	lists, err := deps.Favorites.FetchLists(ctx, query.Token)
	if err != nil {
		return GetFavoritesViewResult{}, err
	}

	views := make([]FavoritesListView, 0, len(lists))
	for _, l := range lists {
		view := FavoritesListView{ID: l.ID, Name: l.Name}
		for _, id := range l.ActivityIDs {
			a, ok := deps.Catalog.ByID(id)
			if !ok {
				view.Missing++
				continue
			}
			view.Items = append(view.Items, CatalogItem{
				Activity: a,
				Decision: entitlement.Resolve(a, query.Session),
			})
		}
		views = append(views, view)
	}

	return GetFavoritesViewResult{Lists: views}, nil
}
