package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tunelingo/internal/adapters/email"
	domainNewsletter "tunelingo/internal/domain/newsletter"
	domainOutbox "tunelingo/internal/domain/outbox"
)

// NewsletterStoreForSignup defines the store interface needed by signup.
type NewsletterStoreForSignup interface {
	GetByEmail(ctx context.Context, email string) (domainNewsletter.Subscriber, error)
	Save(ctx context.Context, s domainNewsletter.Subscriber) error
}

// OutboxStoreForSignup queues the welcome email for the worker.
type OutboxStoreForSignup interface {
	Save(ctx context.Context, e domainOutbox.Entry) error
}

// NewsletterSignupInput carries input for the signup orchestrator.
type NewsletterSignupInput struct {
	Email  string
	Source string // page the signup came from
}

// NewsletterSignupDeps holds dependencies for signup.
type NewsletterSignupDeps struct {
	Subscribers    NewsletterStoreForSignup
	Outbox         OutboxStoreForSignup
	UnsubscribeURL string // base URL; subscriber ID is appended
}

// ExecuteNewsletterSignup records a newsletter signup and queues the
// welcome email. Signing up an address that is already subscribed is a
// silent success; a previously unsubscribed address is re-subscribed.
// The welcome email goes through the outbox so a provider outage never
// fails the signup.
// PRE: input.Email is the raw form value
// POST: Subscriber exists with status subscribed; welcome email queued
// for new signups
func ExecuteNewsletterSignup(ctx context.Context, input NewsletterSignupInput, deps NewsletterSignupDeps) error {
	sub := domainNewsletter.Subscriber{
		Email:  strings.ToLower(strings.TrimSpace(input.Email)),
		Source: input.Source,
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	existing, err := deps.Subscribers.GetByEmail(ctx, sub.Email)
	if err == nil {
		if existing.IsSubscribed() {
			slog.Info("newsletter_event", "event", "signup_duplicate", "subscriber_id", existing.ID)
			return nil
		}
		// Re-subscribe without a second welcome email.
		existing.Status = domainNewsletter.StatusSubscribed
		existing.UnsubscribedAt = time.Time{}
		if err := deps.Subscribers.Save(ctx, existing); err != nil {
			return fmt.Errorf("failed to re-subscribe: %w", err)
		}
		slog.Info("newsletter_event", "event", "resubscribed", "subscriber_id", existing.ID)
		return nil
	}

	sub.ID = uuid.NewString()
	sub.Status = domainNewsletter.StatusSubscribed
	sub.SubscribedAt = time.Now().UTC()
	if err := deps.Subscribers.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscriber: %w", err)
	}

	welcome := email.NewsletterWelcome(sub.Email, deps.UnsubscribeURL+sub.ID)
	payload, _ := json.Marshal(EmailOutboxPayload{
		To:      welcome.To,
		Subject: welcome.Subject,
		HTML:    welcome.HTML,
	})
	entry := domainOutbox.Entry{
		ID:         uuid.NewString(),
		ActionType: domainOutbox.ActionTypeEmail,
		Payload:    string(payload),
		Status:     domainOutbox.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		// The signup itself succeeded; losing the welcome email is logged
		// but not surfaced.
		slog.Error("newsletter_event", "event", "welcome_enqueue_failed", "subscriber_id", sub.ID, "error", err)
		return nil
	}

	slog.Info("newsletter_event", "event", "signup", "subscriber_id", sub.ID, "source", input.Source)
	return nil
}

// NewsletterStoreForUnsubscribe defines the store interface needed by
// unsubscribe.
type NewsletterStoreForUnsubscribe interface {
	GetByID(ctx context.Context, id string) (domainNewsletter.Subscriber, error)
	Save(ctx context.Context, s domainNewsletter.Subscriber) error
}

// ExecuteNewsletterUnsubscribe opts a subscriber out by ID.
// PRE: subscriberID came from an unsubscribe link
// POST: Subscriber status is unsubscribed; unknown IDs are a silent no-op
func ExecuteNewsletterUnsubscribe(ctx context.Context, subscriberID string, store NewsletterStoreForUnsubscribe) error {
	sub, err := store.GetByID(ctx, subscriberID)
	if err != nil {
		slog.Info("newsletter_event", "event", "unsubscribe_unknown", "subscriber_id", subscriberID)
		return nil
	}
	if !sub.IsSubscribed() {
		return nil
	}
	sub.Unsubscribe(time.Now().UTC())
	if err := store.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	slog.Info("newsletter_event", "event", "unsubscribed", "subscriber_id", subscriberID)
	return nil
}
