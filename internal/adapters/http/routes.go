package web

import (
	"net/http"

	"tunelingo/internal/adapters/http/middleware"
)

// registerRoutes attaches every handler to the mux. Method checks live in
// the handlers so a wrong verb gets a 405 instead of a 404.
func registerRoutes(mux *http.ServeMux) {
	// Marketing and portal pages
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/pricing", handlePricing)
	mux.HandleFunc("/signup", handleSignup)
	mux.HandleFunc("/activities", handleActivitiesPage)
	mux.Handle("/favorites", middleware.RequireMember(http.HandlerFunc(handleFavoritesPage)))
	mux.Handle("/account", middleware.RequireMember(http.HandlerFunc(handleAccountPage)))
	mux.HandleFunc("/welcome", handleWelcome)
	mux.HandleFunc("/newsletter-thanks", handleNewsletterThanks)
	mux.HandleFunc("/unsubscribe", handleNewsletterUnsubscribe)
	mux.HandleFunc("/share/{code}", handleShareLanding)

	// Member auth (identity provider) and the local admin login
	mux.HandleFunc("/auth/login", handleMemberLogin)
	mux.HandleFunc("/auth/callback", handleMemberCallback)
	mux.HandleFunc("/login", handleAdminLogin)
	mux.HandleFunc("/logout", handleLogout)

	// JSON API for the portal front end
	mux.HandleFunc("/api/activities", handleActivities)
	mux.HandleFunc("/api/activities/start", handleStartActivity)
	mux.HandleFunc("/api/session/refresh", handleRefreshMembership)
	mux.HandleFunc("/api/favorites", handleFavorites)
	mux.HandleFunc("/api/favorites/{activityId}", handleRemoveFavorite)
	mux.HandleFunc("/api/favorite-lists", handleCreateFavoriteList)
	mux.HandleFunc("/api/share/{code}", handleShareAPI)
	mux.HandleFunc("/api/billing/checkout", handleCheckout)
	mux.HandleFunc("/api/billing/portal", handleBillingPortal)
	mux.HandleFunc("/api/newsletter", handleNewsletterSignup)
	mux.HandleFunc("/api/beacons", handleBeacon)

	// Admin surface
	mux.HandleFunc("/admin", handleAdminDashboard)
	mux.HandleFunc("/admin/subscribers", handleAdminSubscribers)
	mux.HandleFunc("/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/admin/outbox/{id}/{action}", handleAdminOutboxAction)
	mux.HandleFunc("/admin/accounts", handleAdminAccounts)
	mux.HandleFunc("/admin/accounts/{id}", handleAdminAccountDelete)
	mux.HandleFunc("/admin/catalog/refresh", handleAdminCatalogRefresh)
	mux.HandleFunc("/admin/change-password", handleChangePassword)
}
