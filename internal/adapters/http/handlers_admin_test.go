package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tunelingo/internal/adapters/email"
	"tunelingo/internal/adapters/http/middleware"
	accountDomain "tunelingo/internal/domain/account"
	newsletterDomain "tunelingo/internal/domain/newsletter"
	outboxDomain "tunelingo/internal/domain/outbox"
)

var editorSession = middleware.Session{
	AccountID: "acct-002",
	Email:     "editor@test.com",
	Role:      "editor",
	CreatedAt: time.Now(),
}

// stubSender records sends and returns a fixed message ID.
type stubSender struct {
	sent []email.SendRequest
	err  error
}

func (s *stubSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	if s.err != nil {
		return email.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: "msg-1"}, nil
}

func (s *stubSender) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	results := make([]email.SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := s.Send(ctx, req)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func seedOutboxEntry(t *testing.T, id, status string, attempts int) {
	t.Helper()
	entry := outboxDomain.Entry{
		ID:          id,
		ActionType:  outboxDomain.ActionTypeEmail,
		Payload:     `{"to":["a@b.com"],"subject":"Hi","html":"<p>x</p>"}`,
		Status:      status,
		Attempts:    attempts,
		MaxAttempts: 5,
		CreatedAt:   time.Now(),
	}
	if err := stores.OutboxStore.Save(context.Background(), entry); err != nil {
		t.Fatalf("seed outbox: %v", err)
	}
}

// --- Tests: /admin/outbox ---

func TestHandleAdminOutbox_GET(t *testing.T) {
	setupHandlers(t)
	seedOutboxEntry(t, "e1", outboxDomain.StatusPending, 0)
	seedOutboxEntry(t, "e2", outboxDomain.StatusFailed, 5)

	req := authRequest("GET", "/admin/outbox", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminOutbox(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if got := len(body["Pending"].([]any)); got != 1 {
		t.Errorf("got %d pending, want 1", got)
	}
	if got := len(body["Failed"].([]any)); got != 1 {
		t.Errorf("got %d failed, want 1", got)
	}
}

func TestHandleAdminOutbox_RequiresAdmin(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest("GET", "/admin/outbox", nil)
	rec := httptest.NewRecorder()
	handleAdminOutbox(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = authRequest("GET", "/admin/outbox", "", editorSession)
	rec = httptest.NewRecorder()
	handleAdminOutbox(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("editor: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	// A member session never opens the admin surface.
	req = authRequest("GET", "/admin/outbox", "", subscriberSession)
	rec = httptest.NewRecorder()
	handleAdminOutbox(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("member: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleAdminOutboxAction_Retry(t *testing.T) {
	setupHandlers(t)
	sender := &stubSender{}
	SetEmailSender(sender)
	seedOutboxEntry(t, "e1", outboxDomain.StatusFailed, 2)

	req := authRequest("POST", "/admin/outbox/e1/retry", "", adminSession)
	req.SetPathValue("id", "e1")
	req.SetPathValue("action", "retry")
	rec := httptest.NewRecorder()
	handleAdminOutboxAction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(sender.sent))
	}
	entry, err := stores.OutboxStore.GetByID(context.Background(), "e1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != outboxDomain.StatusDone || entry.ExternalID != "msg-1" {
		t.Errorf("got status=%s externalID=%s, want done msg-1", entry.Status, entry.ExternalID)
	}
}

func TestHandleAdminOutboxAction_Abandon(t *testing.T) {
	setupHandlers(t)
	SetEmailSender(&stubSender{})
	seedOutboxEntry(t, "e1", outboxDomain.StatusFailed, 2)

	req := authRequest("POST", "/admin/outbox/e1/abandon", "", adminSession)
	req.SetPathValue("id", "e1")
	req.SetPathValue("action", "abandon")
	rec := httptest.NewRecorder()
	handleAdminOutboxAction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	entry, _ := stores.OutboxStore.GetByID(context.Background(), "e1")
	if entry.Status != outboxDomain.StatusAbandoned {
		t.Errorf("status = %s, want abandoned", entry.Status)
	}
}

func TestHandleAdminOutboxAction_UnknownAction(t *testing.T) {
	setupHandlers(t)
	seedOutboxEntry(t, "e1", outboxDomain.StatusFailed, 2)

	req := authRequest("POST", "/admin/outbox/e1/requeue", "", adminSession)
	req.SetPathValue("id", "e1")
	req.SetPathValue("action", "requeue")
	rec := httptest.NewRecorder()
	handleAdminOutboxAction(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --- Tests: /admin/accounts ---

func TestHandleAdminAccounts_Create(t *testing.T) {
	setupHandlers(t)

	body := `{"email":"new-editor@tunelingo.app","password":"a-long-enough-password","role":"editor"}`
	req := authRequest("POST", "/admin/accounts", body, adminSession)
	rec := httptest.NewRecorder()
	handleAdminAccounts(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	created, err := stores.AccountStore.GetByID(context.Background(), resp["id"].(string))
	if err != nil {
		t.Fatalf("created account not persisted: %v", err)
	}
	if created.Role != accountDomain.RoleEditor {
		t.Errorf("role = %s, want editor", created.Role)
	}
}

func TestHandleAdminAccounts_DuplicateEmail(t *testing.T) {
	setupHandlers(t)

	body := `{"email":"dup@tunelingo.app","password":"a-long-enough-password","role":"admin"}`
	req := authRequest("POST", "/admin/accounts", body, adminSession)
	rec := httptest.NewRecorder()
	handleAdminAccounts(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: got %d", rec.Code)
	}

	req = authRequest("POST", "/admin/accounts", body, adminSession)
	rec = httptest.NewRecorder()
	handleAdminAccounts(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleAdminAccounts_ListHidesHashes(t *testing.T) {
	setupHandlers(t)

	acct := accountDomain.Account{ID: "acct-9", Email: "x@tunelingo.app", Role: "admin", CreatedAt: time.Now()}
	if err := acct.SetPassword("a-long-enough-password"); err != nil {
		t.Fatal(err)
	}
	if err := stores.AccountStore.Save(context.Background(), acct); err != nil {
		t.Fatal(err)
	}

	req := authRequest("GET", "/admin/accounts", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); len(got) > 0 && (strings.Contains(got, "hash") || strings.Contains(got, "$2a$")) {
		t.Errorf("response leaks password material: %s", got)
	}
}

func TestHandleAdminAccountDelete(t *testing.T) {
	setupHandlers(t)

	for _, a := range []accountDomain.Account{
		{ID: "acct-1", Email: "one@tunelingo.app", Role: accountDomain.RoleAdmin, CreatedAt: time.Now()},
		{ID: "acct-2", Email: "two@tunelingo.app", Role: accountDomain.RoleEditor, CreatedAt: time.Now()},
	} {
		if err := stores.AccountStore.Save(context.Background(), a); err != nil {
			t.Fatal(err)
		}
	}

	req := authRequest("DELETE", "/admin/accounts/acct-2", "", adminSession)
	req.SetPathValue("id", "acct-2")
	rec := httptest.NewRecorder()
	handleAdminAccountDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if _, err := stores.AccountStore.GetByID(context.Background(), "acct-2"); err == nil {
		t.Error("account still present after delete")
	}
}

func TestHandleAdminAccountDelete_LastAdmin(t *testing.T) {
	setupHandlers(t)

	acct := accountDomain.Account{ID: "acct-1", Email: "one@tunelingo.app", Role: accountDomain.RoleAdmin, CreatedAt: time.Now()}
	if err := stores.AccountStore.Save(context.Background(), acct); err != nil {
		t.Fatal(err)
	}

	req := authRequest("DELETE", "/admin/accounts/acct-1", "", adminSession)
	req.SetPathValue("id", "acct-1")
	rec := httptest.NewRecorder()
	handleAdminAccountDelete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want %d", rec.Code, http.StatusConflict)
	}
	if _, err := stores.AccountStore.GetByID(context.Background(), "acct-1"); err != nil {
		t.Error("last admin should survive the delete attempt")
	}
}

func TestHandleAdminAccountDelete_OwnAccount(t *testing.T) {
	setupHandlers(t)

	req := authRequest("DELETE", "/admin/accounts/"+adminSession.AccountID, "", adminSession)
	req.SetPathValue("id", adminSession.AccountID)
	rec := httptest.NewRecorder()
	handleAdminAccountDelete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want %d", rec.Code, http.StatusConflict)
	}
}

// --- Tests: /admin/catalog/refresh ---

func TestHandleAdminCatalogRefresh(t *testing.T) {
	setupHandlers(t)

	req := authRequest("POST", "/admin/catalog/refresh", "", editorSession)
	rec := httptest.NewRecorder()
	handleAdminCatalogRefresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["size"].(float64) != 3 {
		t.Errorf("size = %v, want 3", body["size"])
	}
}

func TestHandleAdminCatalogRefresh_RequiresStaff(t *testing.T) {
	setupHandlers(t)

	req := authRequest("POST", "/admin/catalog/refresh", "", subscriberSession)
	rec := httptest.NewRecorder()
	handleAdminCatalogRefresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// --- Tests: /unsubscribe ---

func TestHandleNewsletterUnsubscribe_FlipsStatus(t *testing.T) {
	setupHandlers(t)
	sub := newsletterDomain.Subscriber{
		ID:     "sub-1",
		Email:  "gone@example.com",
		Status: newsletterDomain.StatusSubscribed,
	}
	if err := stores.NewsletterStore.Save(context.Background(), sub); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/unsubscribe?id=sub-1", nil)
	rec := httptest.NewRecorder()
	handleNewsletterUnsubscribe(rec, req)

	got, err := stores.NewsletterStore.GetByID(context.Background(), "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != newsletterDomain.StatusUnsubscribed {
		t.Errorf("status = %s, want unsubscribed", got.Status)
	}
}
