package web

import (
	"net/http"

	"tunelingo/internal/application/projections"
)

// shareLandingDeps builds the projection deps for share validation.
func shareLandingDeps() projections.GetShareLandingDeps {
	return projections.GetShareLandingDeps{
		Shares:  clients.Backend,
		Catalog: clients.Snapshot,
		Now:     timeNow,
	}
}

// handleShareLanding handles GET /share/{code}
// The landing page an anonymous visitor reaches from a shared link.
func handleShareLanding(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetShareLanding(r.Context(), projections.GetShareLandingQuery{
		Code:    r.PathValue("code"),
		Session: sessionFromRequest(r),
	}, shareLandingDeps())
	if err != nil {
		internalError(w, err)
		return
	}

	if !result.Valid {
		renderTemplate(w, r, "share_invalid.html", map[string]any{
			"Message": result.Message,
		})
		return
	}

	renderTemplate(w, r, "share_landing.html", map[string]any{
		"Code":      result.Summary.Code,
		"Title":     result.Summary.ActivityTitle,
		"Thumbnail": result.Summary.Thumbnail,
		"ExpiresAt": result.Summary.ExpiresAt,
		"Activity":  result.Summary.ActivityID,
		"Decision":  string(result.Decision),
	})
}

// handleShareAPI handles GET /api/share/{code}
// JSON twin of the landing page for client-side rendering.
func handleShareAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetShareLanding(r.Context(), projections.GetShareLandingQuery{
		Code:    r.PathValue("code"),
		Session: sessionFromRequest(r),
	}, shareLandingDeps())
	if err != nil {
		internalError(w, err)
		return
	}

	if !result.Valid {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":   false,
			"reason":  string(result.Reason),
			"message": result.Message,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"activityId": result.Summary.ActivityID,
		"title":      result.Summary.ActivityTitle,
		"thumbnail":  result.Summary.Thumbnail,
		"expiresAt":  result.Summary.ExpiresAt,
		"decision":   string(result.Decision),
	})
}
