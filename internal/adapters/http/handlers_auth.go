package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"tunelingo/internal/adapters/http/middleware"
	"tunelingo/internal/application/orchestrators"
)

const (
	oauthStateCookie = "tunelingo_oauth_state"
	oauthNonceCookie = "tunelingo_oauth_nonce"
)

func setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   600, // the round-trip to the provider should take seconds
	})
}

func clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// handleMemberLogin handles GET /auth/login
// Redirects the browser to the identity provider with fresh state and nonce.
func handleMemberLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.IsMember() {
		http.Redirect(w, r, "/activities", http.StatusSeeOther)
		return
	}
	if clients.Identity == nil || !clients.Identity.Configured() {
		http.Error(w, "sign-in is not configured", http.StatusServiceUnavailable)
		return
	}

	state := generateID()
	nonce := generateID()
	setFlowCookie(w, oauthStateCookie, state)
	setFlowCookie(w, oauthNonceCookie, nonce)

	http.Redirect(w, r, clients.Identity.AuthCodeURL(state, nonce), http.StatusSeeOther)
}

// handleMemberCallback handles GET /auth/callback
// Exchanges the provider code, verifies the ID token against the stored
// nonce, checks membership, and establishes the member session.
func handleMemberCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "invalid sign-in state", http.StatusBadRequest)
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil || nonceCookie.Value == "" {
		http.Error(w, "invalid sign-in state", http.StatusBadRequest)
		return
	}
	clearFlowCookie(w, oauthStateCookie)
	clearFlowCookie(w, oauthNonceCookie)

	result, err := orchestrators.ExecuteOAuthLogin(r.Context(), orchestrators.OAuthLoginInput{
		Code:  r.URL.Query().Get("code"),
		Nonce: nonceCookie.Value,
	}, orchestrators.OAuthLoginDeps{
		Identity:   clients.Identity,
		Verifier:   clients.Verifier,
		Membership: clients.Backend,
	})
	if err != nil {
		renderTemplate(w, r, "login_failed.html", map[string]any{
			"Error": "Sign-in didn't work. Please try again.",
		})
		return
	}

	token, err := sessions.CreateMember(result.UserID, result.Email, result.Name, result.Token, result.Subscribed)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	http.Redirect(w, r, "/activities", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("tunelingo_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRefreshMembership handles POST /api/session/refresh
// Re-checks subscription state with the backend and updates the session.
// The entitlement result itself is never cached; only the session flag.
func handleRefreshMembership(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsMember() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subscribed, err := orchestrators.ExecuteRefreshMembership(r.Context(), sess.Token, orchestrators.OAuthLoginDeps{
		Membership: clients.Backend,
	})
	if err != nil {
		http.Error(w, "membership check unavailable", http.StatusBadGateway)
		return
	}

	cookie, err := r.Cookie("tunelingo_session")
	if err == nil {
		sess.Subscribed = subscribed
		sessions.Update(cookie.Value, sess)
	}

	writeJSON(w, http.StatusOK, map[string]any{"subscribed": subscribed})
}

// handleAdminLogin handles GET (form) and POST (authenticate) for /login
// This is the local staff login; members sign in via /auth/login.
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.IsAdminSession() {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.AdminLoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}

		result, err := orchestrators.ExecuteAdminLogin(r.Context(), input, orchestrators.AdminLoginDeps{
			AccountStore: stores.AccountStore,
		})
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.CreateAdmin(result.AccountID, result.Email, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
