package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domainNewsletter "tunelingo/internal/domain/newsletter"
	domainOutbox "tunelingo/internal/domain/outbox"
)

// mockNewsletterStore implements the signup and unsubscribe store interfaces.
type mockNewsletterStore struct {
	byEmail map[string]domainNewsletter.Subscriber
	byID    map[string]domainNewsletter.Subscriber
}

func newMockNewsletterStore() *mockNewsletterStore {
	return &mockNewsletterStore{
		byEmail: map[string]domainNewsletter.Subscriber{},
		byID:    map[string]domainNewsletter.Subscriber{},
	}
}

func (m *mockNewsletterStore) GetByEmail(_ context.Context, email string) (domainNewsletter.Subscriber, error) {
	s, ok := m.byEmail[email]
	if !ok {
		return domainNewsletter.Subscriber{}, errors.New("not found")
	}
	return s, nil
}

func (m *mockNewsletterStore) GetByID(_ context.Context, id string) (domainNewsletter.Subscriber, error) {
	s, ok := m.byID[id]
	if !ok {
		return domainNewsletter.Subscriber{}, errors.New("not found")
	}
	return s, nil
}

func (m *mockNewsletterStore) Save(_ context.Context, s domainNewsletter.Subscriber) error {
	m.byEmail[s.Email] = s
	m.byID[s.ID] = s
	return nil
}

// mockOutboxSaver implements OutboxStoreForSignup.
type mockOutboxSaver struct {
	entries []domainOutbox.Entry
	err     error
}

func (m *mockOutboxSaver) Save(_ context.Context, e domainOutbox.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestExecuteNewsletterSignup_New(t *testing.T) {
	store := newMockNewsletterStore()
	outbox := &mockOutboxSaver{}
	deps := NewsletterSignupDeps{Subscribers: store, Outbox: outbox, UnsubscribeURL: "https://tunelingo.app/unsubscribe?id="}

	err := ExecuteNewsletterSignup(context.Background(),
		NewsletterSignupInput{Email: " Learner@Example.COM ", Source: "pricing"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, ok := store.byEmail["learner@example.com"]
	if !ok {
		t.Fatal("subscriber not saved under normalized email")
	}
	if !sub.IsSubscribed() || sub.Source != "pricing" {
		t.Errorf("subscriber = %+v", sub)
	}

	if len(outbox.entries) != 1 {
		t.Fatalf("outbox entries = %d, want 1", len(outbox.entries))
	}
	entry := outbox.entries[0]
	if entry.ActionType != domainOutbox.ActionTypeEmail {
		t.Errorf("ActionType = %s", entry.ActionType)
	}
	if !strings.Contains(entry.Payload, sub.ID) {
		t.Error("welcome payload missing unsubscribe link")
	}
}

func TestExecuteNewsletterSignup_Duplicate(t *testing.T) {
	store := newMockNewsletterStore()
	existing := domainNewsletter.Subscriber{
		ID: "s1", Email: "learner@example.com",
		Status: domainNewsletter.StatusSubscribed, SubscribedAt: time.Now(),
	}
	_ = store.Save(context.Background(), existing)
	outbox := &mockOutboxSaver{}
	deps := NewsletterSignupDeps{Subscribers: store, Outbox: outbox}

	err := ExecuteNewsletterSignup(context.Background(),
		NewsletterSignupInput{Email: "learner@example.com"}, deps)
	if err != nil {
		t.Fatalf("duplicate signup should be silent success: %v", err)
	}
	if len(outbox.entries) != 0 {
		t.Error("duplicate signup should not queue a second welcome email")
	}
}

func TestExecuteNewsletterSignup_Resubscribe(t *testing.T) {
	store := newMockNewsletterStore()
	existing := domainNewsletter.Subscriber{
		ID: "s1", Email: "learner@example.com",
		Status: domainNewsletter.StatusUnsubscribed, SubscribedAt: time.Now(),
		UnsubscribedAt: time.Now(),
	}
	_ = store.Save(context.Background(), existing)
	outbox := &mockOutboxSaver{}
	deps := NewsletterSignupDeps{Subscribers: store, Outbox: outbox}

	err := ExecuteNewsletterSignup(context.Background(),
		NewsletterSignupInput{Email: "learner@example.com"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub := store.byEmail["learner@example.com"]
	if !sub.IsSubscribed() {
		t.Error("subscriber not re-subscribed")
	}
	if len(outbox.entries) != 0 {
		t.Error("re-subscribe should not queue a second welcome email")
	}
}

func TestExecuteNewsletterSignup_InvalidEmail(t *testing.T) {
	deps := NewsletterSignupDeps{Subscribers: newMockNewsletterStore(), Outbox: &mockOutboxSaver{}}

	err := ExecuteNewsletterSignup(context.Background(), NewsletterSignupInput{Email: "not-an-email"}, deps)
	if !errors.Is(err, domainNewsletter.ErrInvalidEmail) {
		t.Errorf("error = %v, want ErrInvalidEmail", err)
	}
}

func TestExecuteNewsletterUnsubscribe(t *testing.T) {
	store := newMockNewsletterStore()
	_ = store.Save(context.Background(), domainNewsletter.Subscriber{
		ID: "s1", Email: "learner@example.com",
		Status: domainNewsletter.StatusSubscribed, SubscribedAt: time.Now(),
	})

	if err := ExecuteNewsletterUnsubscribe(context.Background(), "s1", store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s1 := store.byID["s1"]
	if s1.IsSubscribed() {
		t.Error("subscriber still subscribed")
	}

	// Unknown IDs are a silent no-op so the link can't be probed.
	if err := ExecuteNewsletterUnsubscribe(context.Background(), "unknown", store); err != nil {
		t.Errorf("unknown ID should be a no-op, got: %v", err)
	}
}
