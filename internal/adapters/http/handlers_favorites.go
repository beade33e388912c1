package web

import (
	"errors"
	"net/http"

	"tunelingo/internal/adapters/http/middleware"
	"tunelingo/internal/application/orchestrators"
	"tunelingo/internal/application/projections"
	"tunelingo/internal/domain/favorites"
)

// requireSubscriber checks the session for an active subscription.
// Favorites are a subscriber feature; the backend enforces this too.
func requireSubscriber(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsMember() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if !sess.Subscribed {
		http.Error(w, "subscription required", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// favoritesGuard refuses a second mutation on the same activity while one
// is outstanding. Different activities proceed independently.
var favoritesGuard = orchestrators.NewInFlightGuard()

func beginFavoriteMutation(w http.ResponseWriter, sess middleware.Session, activityID string) bool {
	if !favoritesGuard.TryBegin(sess.UserID + ":" + activityID) {
		http.Error(w, "favorites change already in progress", http.StatusConflict)
		return false
	}
	return true
}

// handleFavorites handles GET (lists) and POST (add) for /api/favorites
func handleFavorites(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSubscriber(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		result, err := projections.QueryGetFavoritesView(r.Context(), projections.GetFavoritesViewQuery{
			Token:   sess.Token,
			Session: sessionFromRequest(r),
		}, projections.GetFavoritesViewDeps{
			Favorites: clients.Backend,
			Catalog:   clients.Snapshot,
		})
		if err != nil {
			http.Error(w, "favorites unavailable", http.StatusBadGateway)
			return
		}

		lists := make([]map[string]any, 0, len(result.Lists))
		for _, l := range result.Lists {
			items := make([]activityJSON, 0, len(l.Items))
			for _, item := range l.Items {
				items = append(items, toActivityJSON(item))
			}
			lists = append(lists, map[string]any{
				"id":      l.ID,
				"name":    l.Name,
				"items":   items,
				"missing": l.Missing,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"lists": lists})

	case "POST":
		var req struct {
			ListID     string `json:"listId"`
			ActivityID string `json:"activityId"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !beginFavoriteMutation(w, sess, req.ActivityID) {
			return
		}
		defer favoritesGuard.End(sess.UserID + ":" + req.ActivityID)

		outcome, err := orchestrators.ExecuteAddFavorite(r.Context(), sess.Token, orchestrators.AddFavoriteInput{
			ListID:     req.ListID,
			ActivityID: req.ActivityID,
		}, orchestrators.AddFavoriteDeps{Client: clients.Backend})
		if err != nil {
			if errors.Is(err, orchestrators.ErrFavoritesUnavailable) {
				http.Error(w, "favorites unavailable", http.StatusBadGateway)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"outcome": string(outcome)})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleCreateFavoriteList handles POST /api/favorite-lists
// Creates a list and adds an activity in one step. When the add fails the
// list still exists, so the response names it either way.
func handleCreateFavoriteList(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSubscriber(w, r)
	if !ok {
		return
	}

	var req struct {
		Name       string `json:"name"`
		ActivityID string `json:"activityId"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !beginFavoriteMutation(w, sess, req.ActivityID) {
		return
	}
	defer favoritesGuard.End(sess.UserID + ":" + req.ActivityID)

	result, err := orchestrators.ExecuteCreateListAndAdd(r.Context(), sess.Token, orchestrators.CreateListAndAddInput{
		Name:       req.Name,
		ActivityID: req.ActivityID,
	}, orchestrators.AddFavoriteDeps{Client: clients.Backend})
	if err != nil {
		if errors.Is(err, favorites.ErrEmptyName) || errors.Is(err, favorites.ErrNameTooLong) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if result.ListID != "" {
			// List created, add failed. 207 tells the UI to retry the add only.
			writeJSON(w, http.StatusMultiStatus, map[string]any{
				"listId": result.ListID,
				"error":  "list created but activity could not be added",
			})
			return
		}
		http.Error(w, "favorites unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listId":  result.ListID,
		"outcome": string(result.Outcome),
	})
}

// handleRemoveFavorite handles DELETE /api/favorites/{activityId}
// Removes the activity from every list that contains it.
func handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSubscriber(w, r)
	if !ok {
		return
	}

	activityID := r.PathValue("activityId")
	if !beginFavoriteMutation(w, sess, activityID) {
		return
	}
	defer favoritesGuard.End(sess.UserID + ":" + activityID)

	report, err := orchestrators.ExecuteRemoveFromAllLists(r.Context(), sess.Token, activityID,
		orchestrators.AddFavoriteDeps{Client: clients.Backend})
	if err != nil {
		if errors.Is(err, orchestrators.ErrFavoritesUnavailable) {
			http.Error(w, "favorites unavailable", http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"removed": report.Removed,
		"failed":  report.Failed,
		"partial": report.Partial(),
	})
}
