package newsletter

import (
	"errors"
	"strings"
	"time"
)

// Subscriber statuses.
const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
)

// Domain errors
var (
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("email must contain '@'")
)

// Subscriber is one marketing-newsletter signup.
type Subscriber struct {
	ID             string
	Email          string
	Status         string
	Source         string // which page the signup came from (e.g. "home", "pricing")
	SubscribedAt   time.Time
	UnsubscribedAt time.Time
}

// Validate checks if the Subscriber has valid data.
// PRE: Subscriber struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Subscriber) Validate() error {
	trimmed := strings.TrimSpace(s.Email)
	if trimmed == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(trimmed, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Unsubscribe marks the subscriber as opted out.
// POST: Status is unsubscribed, UnsubscribedAt is set
func (s *Subscriber) Unsubscribe(now time.Time) {
	s.Status = StatusUnsubscribed
	s.UnsubscribedAt = now
}

// IsSubscribed returns true while the subscriber has not opted out.
// INVARIANT: Subscriber fields are not mutated
func (s *Subscriber) IsSubscribed() bool {
	return s.Status == StatusSubscribed
}
