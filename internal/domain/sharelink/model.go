package sharelink

import (
	"errors"
	"time"
)

// InvalidReason classifies why a share code could not be validated.
// Each reason maps to a distinct user-facing message.
type InvalidReason string

// The distinct validation failures.
const (
	ReasonNotFound    InvalidReason = "not_found"
	ReasonExpired     InvalidReason = "expired"
	ReasonRateLimited InvalidReason = "rate_limited"
	ReasonServerError InvalidReason = "server_error"
)

// ErrEmptyCode is returned when validation is attempted with no code.
var ErrEmptyCode = errors.New("share code cannot be empty")

// Summary is what an anonymous visitor sees on a share landing page: just
// enough about the shared activity to start it, plus when the link dies.
type Summary struct {
	Code          string
	ActivityID    string
	ActivityTitle string
	Thumbnail     string
	ExpiresAt     time.Time
}

// Expired reports whether the link is past its expiry at the given time.
func (s Summary) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Message returns the user-facing message for a validation failure.
// Distinct reasons must stay distinguishable to the visitor.
func Message(reason InvalidReason) string {
	switch reason {
	case ReasonNotFound:
		return "This share link doesn't exist. Check the address and try again."
	case ReasonExpired:
		return "This share link has expired. Ask your teacher to share it again."
	case ReasonRateLimited:
		return "This share link has been opened too many times. Try again later."
	default:
		return "Something went wrong opening this share link. Try again in a moment."
	}
}
