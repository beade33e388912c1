package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"tunelingo/internal/domain/activity"
	"tunelingo/internal/domain/entitlement"
	"tunelingo/internal/domain/grant"
)

// CatalogForStart provides activity lookup for the start orchestrator.
type CatalogForStart interface {
	ByID(id string) (activity.Activity, bool)
}

// GrantRequester obtains playback grants from the backend.
type GrantRequester interface {
	RequestGrant(ctx context.Context, locator, token string) grant.AccessGrant
}

// StartActivityInput carries input for the start orchestrator.
type StartActivityInput struct {
	ActivityID string
	ShareCode  string // set when starting from a share landing page
}

// StartActivitySession is the caller's session state at request time.
type StartActivitySession struct {
	Authenticated bool
	Subscribed    bool
	Token         string
	UserID        string
}

// StartActivityDeps holds dependencies for StartActivity.
type StartActivityDeps struct {
	Catalog CatalogForStart
	Grants  GrantRequester
}

// StartActivityResult is the typed outcome of a start attempt. A failed
// attempt is still a normal result carrying the route the UI should
// offer, never an error.
type StartActivityResult struct {
	Playable    bool
	ActivityURL string
	SetCookies  []string
	Reason      grant.FailureReason // set when not playable
	Redirect    grant.Route         // where to send the user when not playable
}

// ErrActivityNotFound is returned for IDs absent from the catalog.
var ErrActivityNotFound = errors.New("activity not found")

// ExecuteStartActivity attempts to start playback of one activity.
// The local entitlement check runs first so obviously-gated attempts
// never reach the backend; the backend grant remains the authority for
// everything that passes.
// PRE: input.ActivityID is non-empty
// POST: Result carries either playback material or a failure reason and
// route; an error is returned only for unknown activity IDs
// INVARIANT: The session's subscription state is never upgraded here
func ExecuteStartActivity(ctx context.Context, input StartActivityInput, session StartActivitySession, deps StartActivityDeps) (StartActivityResult, error) {
	act, ok := deps.Catalog.ByID(input.ActivityID)
	if !ok {
		return StartActivityResult{}, ErrActivityNotFound
	}

	// A share code authorizes an anonymous attempt for its activity, so
	// the local gate is skipped and the backend alone decides.
	if input.ShareCode == "" {
		decision := entitlement.Resolve(act, entitlement.Session{
			Authenticated: session.Authenticated,
			Subscribed:    session.Subscribed,
		})

		switch decision {
		case entitlement.RequiresLogin:
			slog.Info("start_event", "event", "start_gated", "activity_id", act.ID, "reason", grant.ReasonAuthenticationRequired)
			return gatedResult(grant.ReasonAuthenticationRequired, session.Authenticated), nil
		case entitlement.RequiresSubscription:
			slog.Info("start_event", "event", "start_gated", "activity_id", act.ID, "reason", grant.ReasonSubscriptionRequired)
			return gatedResult(grant.ReasonSubscriptionRequired, session.Authenticated), nil
		}
	}

	g := deps.Grants.RequestGrant(ctx, act.Locator, session.Token)
	if !g.Success {
		slog.Info("start_event", "event", "grant_denied", "activity_id", act.ID, "reason", g.Reason)
		return gatedResult(g.Reason, session.Authenticated), nil
	}

	slog.Info("start_event", "event", "start_granted", "activity_id", act.ID, "user_id", session.UserID)
	return StartActivityResult{
		Playable:    true,
		ActivityURL: g.ActivityURL,
		SetCookies:  g.SetCookies,
	}, nil
}

// gatedResult builds the non-playable result for a failure reason.
func gatedResult(reason grant.FailureReason, authenticated bool) StartActivityResult {
	return StartActivityResult{
		Playable: false,
		Reason:   reason,
		Redirect: grant.RouteFor(reason, authenticated),
	}
}

// InFlightGuard deduplicates concurrent start attempts. A second start
// for the same key while one is running is rejected so double-clicks do
// not produce two backend grant requests.
type InFlightGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewInFlightGuard creates an empty guard.
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{inFlight: map[string]struct{}{}}
}

// TryBegin marks the key as in flight. Returns false if it already is.
// POST: On true, the caller must call End(key) when done
func (g *InFlightGuard) TryBegin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

// End releases the key.
func (g *InFlightGuard) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}
