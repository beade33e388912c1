package entitlement

import "tunelingo/internal/domain/activity"

// Decision is the computed right of the current viewer to open an activity.
type Decision string

// The three possible decisions. There is no fourth outcome.
const (
	Playable             Decision = "playable"
	RequiresLogin        Decision = "requires_login"
	RequiresSubscription Decision = "requires_subscription"
)

// Session is the viewer state threaded explicitly into every decision.
// It is a plain value — never a process-wide singleton — so the resolver
// stays trivially testable and re-evaluates cleanly after login or a
// subscription change.
type Session struct {
	Authenticated bool
	Subscribed    bool
}

// Resolve maps an activity and the viewer session to a Decision.
// The rules apply in priority order:
//  1. a free activity is playable regardless of session,
//  2. an anonymous viewer needs to log in,
//  3. an authenticated, unsubscribed viewer needs a subscription,
//  4. otherwise playable.
//
// Resolve is pure; callers must re-run it whenever session state changes
// rather than caching a decision per activity across a transition.
func Resolve(a activity.Activity, s Session) Decision {
	if a.Free {
		return Playable
	}
	if !s.Authenticated {
		return RequiresLogin
	}
	if !s.Subscribed {
		return RequiresSubscription
	}
	return Playable
}
