package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"tunelingo/internal/adapters/http/middleware"
	accountStore "tunelingo/internal/adapters/storage/account"
	"tunelingo/internal/application/listutil"
	"tunelingo/internal/application/orchestrators"
	"tunelingo/internal/application/projections"
	"tunelingo/internal/domain/account"
	"tunelingo/internal/domain/outbox"
)

// requireAdmin checks the session for the admin role and returns the session.
// Returns false if the request should not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsAdminSession() {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no admin session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != account.RoleAdmin {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", account.RoleAdmin)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireStaff allows both admin and editor sessions through.
func requireStaff(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !sess.IsAdminSession() {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// newOutboxProcessor builds a processor with the live executors so admin
// retries go through the same delivery path as the background worker.
func newOutboxProcessor() *orchestrators.OutboxProcessor {
	executors := map[string]orchestrators.ActionExecutor{}
	if emailSender != nil {
		executors[outbox.ActionTypeEmail] = &orchestrators.EmailExecutor{Sender: emailSender}
	}
	if clients.Backend != nil {
		executors[outbox.ActionTypeBeacon] = &orchestrators.BeaconExecutor{Forwarder: clients.Backend}
	}
	return orchestrators.NewOutboxProcessor(stores.OutboxStore, executors)
}

// handleAdminDashboard renders the admin home screen with catalog, newsletter,
// outbox and usage counters. Route: GET /admin
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}

	deps := projections.GetAdminDashboardDeps{
		Catalog:    clients.Snapshot,
		Newsletter: stores.NewsletterStore,
		Outbox:     stores.OutboxStore,
		Beacons:    stores.BeaconStore,
	}
	result, err := projections.QueryGetAdminDashboard(r.Context(), deps, time.Now())
	if err != nil {
		internalError(w, err)
		return
	}

	data := map[string]any{
		"Dashboard": result,
		"CSRFToken": csrf.Token(r),
	}
	if perfCollector != nil {
		data["Perf"] = perfCollector.Report(time.Now().Add(-time.Hour), 5)
	}
	renderTemplate(w, r, "admin_dashboard.html", data)
}

// handleAdminSubscribers renders the paginated newsletter subscriber list.
// Route: GET /admin/subscribers
func handleAdminSubscribers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	q := r.URL.Query()
	params := listutil.Parse(q, listutil.Spec{
		SortColumns: []string{"email", "subscribed_at"},
		FilterKeys:  []string{"status"},
	})

	result, err := projections.QueryGetSubscriberList(r.Context(), projections.GetSubscriberListQuery{
		Params: params,
		Status: params.Filters["status"],
	}, projections.GetSubscriberListDeps{Newsletter: stores.NewsletterStore})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "admin_subscribers.html", map[string]any{
		"Subscribers": result.Subscribers,
		"PageInfo":    result.PageInfo,
		"Status":      q.Get("status"),
		"CSRFToken":   csrf.Token(r),
	})
}

// handleAdminOutbox lists outbox entries for the retry screen.
// Route: GET /admin/outbox
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	result, err := projections.QueryGetOutboxList(r.Context(), projections.GetOutboxListDeps{
		Outbox: stores.OutboxStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "admin_outbox.html", map[string]any{
		"Pending":   result.Pending,
		"Failed":    result.Failed,
		"CSRFToken": csrf.Token(r),
	})
}

// handleAdminOutboxAction retries or abandons a single outbox entry.
// Route: POST /admin/outbox/{id}/{action}
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	entryID := r.PathValue("id")
	action := r.PathValue("action")
	processor := newOutboxProcessor()

	var err error
	switch action {
	case "retry":
		err = processor.ProcessSingle(r.Context(), entryID)
	case "abandon":
		err = processor.AbandonEntry(r.Context(), entryID)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("outbox_admin_action", "entry_id", entryID, "action", action, "account_id", sess.AccountID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "action": action})
}

// handleAdminAccounts lists staff accounts and creates new ones.
// Routes: GET /admin/accounts, POST /admin/accounts
func handleAdminAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		accounts, err := stores.AccountStore.List(ctx, listAccountFilter(r))
		if err != nil {
			internalError(w, err)
			return
		}
		// Hashes stay server-side.
		type accountRow struct {
			ID        string    `json:"id"`
			Email     string    `json:"email"`
			Role      string    `json:"role"`
			CreatedAt time.Time `json:"createdAt"`
		}
		rows := make([]accountRow, 0, len(accounts))
		for _, a := range accounts {
			rows = append(rows, accountRow{ID: a.ID, Email: a.Email, Role: a.Role, CreatedAt: a.CreatedAt})
		}
		writeJSON(w, http.StatusOK, rows)

	case "POST":
		sess, ok := requireAdmin(w, r)
		if !ok {
			return
		}
		var input struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		id, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
			Email:    input.Email,
			Password: input.Password,
			Role:     input.Role,
		}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Info("auth_event", "event", "account_created", "account_id", id, "created_by", sess.AccountID)
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminAccountDelete removes a staff account. Deleting yourself or
// the last remaining admin is refused.
// Route: DELETE /admin/accounts/{id}
func handleAdminAccountDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == sess.AccountID {
		http.Error(w, "cannot delete your own account", http.StatusConflict)
		return
	}

	if err := stores.AccountStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, account.ErrLastAdmin) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}

	slog.Info("auth_event", "event", "account_deleted", "account_id", id, "deleted_by", sess.AccountID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func listAccountFilter(r *http.Request) accountStore.ListFilter {
	q := r.URL.Query()
	filter := accountStore.ListFilter{Limit: 100}
	if role := q.Get("role"); role != "" {
		filter.Role = role
	}
	return filter
}

// handleAdminCatalogRefresh reloads the catalog snapshot on demand, used
// after backend content changes. Route: POST /admin/catalog/refresh
func handleAdminCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	if err := orchestrators.ExecuteCatalogRefresh(r.Context(), clients.Snapshot); err != nil {
		http.Error(w, "catalog refresh failed", http.StatusBadGateway)
		return
	}

	slog.Info("catalog_event", "event", "manual_refresh", "account_id", sess.AccountID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"size":   len(clients.Snapshot.Activities()),
	})
}

// handleChangePassword handles GET (form) and POST (update) for /admin/change-password.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !session.IsAdminSession() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "change_password.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Form error", http.StatusBadRequest)
			return
		}

		if r.FormValue("NewPassword") != r.FormValue("ConfirmPassword") {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "New passwords do not match",
			})
			return
		}

		input := orchestrators.ChangePasswordInput{
			AccountID:       session.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}
		deps := orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore}

		if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
