package web

import (
	"errors"
	"net/http"

	"tunelingo/internal/adapters/http/middleware"
	"tunelingo/internal/application/orchestrators"
)

// handleCheckout handles POST /api/billing/checkout
// Creates a hosted checkout session and returns its URL. Plan changes for
// existing subscribers are allowed; the backend sorts them out.
func handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsMember() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	url, err := orchestrators.ExecuteCheckout(r.Context(), sess.Token, orchestrators.CheckoutInput{
		Plan:       req.Plan,
		SuccessURL: absoluteURL(r, "/welcome"),
		CancelURL:  absoluteURL(r, "/pricing"),
	}, orchestrators.CheckoutDeps{Billing: clients.Billing})
	if err != nil {
		if errors.Is(err, orchestrators.ErrUnknownPlan) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "billing unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

// handleBillingPortal handles POST /api/billing/portal
func handleBillingPortal(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsMember() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	url, err := orchestrators.ExecuteBillingPortal(r.Context(), sess.Token, absoluteURL(r, "/account"),
		orchestrators.CheckoutDeps{Billing: clients.Billing})
	if err != nil {
		http.Error(w, "billing unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

// absoluteURL builds a same-origin absolute URL for provider redirects.
func absoluteURL(r *http.Request, path string) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + path
}
