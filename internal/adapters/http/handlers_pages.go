package web

import (
	"net/http"

	"tunelingo/internal/adapters/http/middleware"
)

// handleHome handles GET / for the marketing landing page.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, "home.html", nil)
}

// handlePricing handles GET /pricing
func handlePricing(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "pricing.html", map[string]any{
		"FAQ": pricingFAQ,
	})
}

// pricingFAQ is markdown so marketing can edit it without touching HTML.
const pricingFAQ = `### Can I cancel at any time?

Yes. Your subscription stays active until the end of the paid period.

### Do free songs need an account?

No. Anything marked free plays without signing in.

### What payment methods do you accept?

Checkout is handled by our payment provider and accepts all major cards.`

// handleSignup handles GET /signup
// Sign-up happens at the identity provider; this page explains the product
// and hands off to /auth/login.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.IsMember() {
		http.Redirect(w, r, "/activities", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "signup.html", nil)
}

// handleActivitiesPage handles GET /activities
// The browsable catalog. Filtering happens client-side against
// /api/activities; this just renders the shell.
func handleActivitiesPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "activities.html", nil)
}

// handleFavoritesPage handles GET /favorites
func handleFavoritesPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "favorites.html", nil)
}

// handleAccountPage handles GET /account
func handleAccountPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	renderTemplate(w, r, "account.html", map[string]any{
		"Email":      sess.Email,
		"Name":       sess.Name,
		"Subscribed": sess.Subscribed,
	})
}

// handleWelcome handles GET /welcome
// Landing page after checkout. The page script calls /api/session/refresh
// so the new subscription takes effect without a fresh sign-in.
func handleWelcome(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "welcome.html", nil)
}

// handleNewsletterThanks handles GET /newsletter-thanks
func handleNewsletterThanks(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "newsletter_thanks.html", nil)
}
