package web

import (
	"net/http"

	"tunelingo/internal/application/orchestrators"
)

// handleNewsletterSignup handles POST /api/newsletter
// Accepts both form posts (marketing pages) and JSON. Duplicate signups
// succeed silently so the form never leaks who is subscribed.
func handleNewsletterSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var email, source string
	if r.Header.Get("Content-Type") == "application/json" {
		var req struct {
			Email  string `json:"email"`
			Source string `json:"source"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		email, source = req.Email, req.Source
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		email, source = r.FormValue("Email"), r.FormValue("Source")
	}

	deps := orchestrators.NewsletterSignupDeps{
		Subscribers:    stores.NewsletterStore,
		Outbox:         stores.OutboxStore,
		UnsubscribeURL: absoluteURL(r, "/unsubscribe?id="),
	}
	if err := orchestrators.ExecuteNewsletterSignup(r.Context(), orchestrators.NewsletterSignupInput{
		Email:  email,
		Source: source,
	}, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/newsletter-thanks", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribed": true})
}

// handleNewsletterUnsubscribe handles GET /unsubscribe?id=<subscriber>
// Unknown IDs land on the same confirmation page as real ones.
func handleNewsletterUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if err := orchestrators.ExecuteNewsletterUnsubscribe(r.Context(), id, stores.NewsletterStore); err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "unsubscribed.html", nil)
}
