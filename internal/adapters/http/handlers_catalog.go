package web

import (
	"net/http"

	"tunelingo/internal/adapters/http/middleware"
	"tunelingo/internal/application/orchestrators"
	"tunelingo/internal/application/projections"
	"tunelingo/internal/domain/activity"
	"tunelingo/internal/domain/entitlement"
)

// activityJSON is the wire shape of one annotated catalog item. The
// content locator never leaves the server.
type activityJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    string   `json:"category"`
	Genre       string   `json:"genre"`
	Free        bool     `json:"free"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Duration    int      `json:"duration,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Decision    string   `json:"decision"`
}

// sessionFromRequest maps the HTTP session onto the entitlement session.
func sessionFromRequest(r *http.Request) entitlement.Session {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsMember() {
		return entitlement.Session{}
	}
	return entitlement.Session{Authenticated: true, Subscribed: sess.Subscribed}
}

// filterFromQuery parses filter selections from untrusted query parameters.
func filterFromQuery(r *http.Request) activity.FilterState {
	q := r.URL.Query()
	return activity.FilterState{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
		FreeOnly: q.Get("free") == "true" || q.Get("free") == "1",
		Sort:     q.Get("sort"),
	}.Normalize()
}

// handleActivities handles GET /api/activities
func handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetCatalogView(r.Context(), projections.GetCatalogViewQuery{
		Filter:  filterFromQuery(r),
		Session: sessionFromRequest(r),
	}, projections.GetCatalogViewDeps{Catalog: clients.Snapshot})
	if err != nil {
		internalError(w, err)
		return
	}

	items := make([]activityJSON, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toActivityJSON(item))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"total":      result.Total,
		"loaded":     result.Loaded,
		"degraded":   result.Degraded,
		"categories": result.Categories,
		"genres":     result.Genres,
	})
}

func toActivityJSON(item projections.CatalogItem) activityJSON {
	a := item.Activity
	return activityJSON{
		ID:          a.ID,
		Title:       a.Title,
		Artist:      a.Artist,
		Description: a.Description,
		Tags:        a.Tags,
		Category:    a.Category,
		Genre:       a.Genre,
		Free:        a.Free,
		Thumbnail:   a.Thumbnail,
		Duration:    a.Duration,
		Difficulty:  a.Difficulty,
		Decision:    string(item.Decision),
	}
}

// handleStartActivity handles POST /api/activities/start
// A failed start is still a 200 with a reason and redirect route; only
// unknown activities and transport problems are HTTP errors.
func handleStartActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ActivityID string `json:"activityId"`
		ShareCode  string `json:"shareCode"`
	}
	if err := strictDecode(r, &req); err != nil || req.ActivityID == "" {
		http.Error(w, "activityId is required", http.StatusBadRequest)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	session := orchestrators.StartActivitySession{
		Authenticated: sess.IsMember(),
		Subscribed:    sess.Subscribed,
		Token:         sess.Token,
		UserID:        sess.UserID,
	}

	// Double-clicks must not produce two backend grant requests.
	guardKey := sess.UserID + ":" + req.ActivityID
	if sess.UserID == "" {
		guardKey = r.RemoteAddr + ":" + req.ActivityID
	}
	if !startGuard.TryBegin(guardKey) {
		http.Error(w, "start already in progress", http.StatusConflict)
		return
	}
	defer startGuard.End(guardKey)

	result, err := orchestrators.ExecuteStartActivity(r.Context(), orchestrators.StartActivityInput{
		ActivityID: req.ActivityID,
		ShareCode:  req.ShareCode,
	}, session, orchestrators.StartActivityDeps{
		Catalog: clients.Snapshot,
		Grants:  clients.Backend,
	})
	if err != nil {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}

	// Grant cookies pass through to the browser untouched.
	for _, c := range result.SetCookies {
		w.Header().Add("Set-Cookie", c)
	}

	if !result.Playable {
		writeJSON(w, http.StatusOK, map[string]any{
			"playable": false,
			"reason":   string(result.Reason),
			"redirect": string(result.Redirect),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playable":    true,
		"activityUrl": result.ActivityURL,
	})
}
