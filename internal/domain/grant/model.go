package grant

// FailureReason classifies why a grant request did not yield a playable URL.
type FailureReason string

// The typed failure reasons a grant request can produce.
const (
	ReasonAuthenticationRequired FailureReason = "authentication_required"
	ReasonSubscriptionRequired   FailureReason = "subscription_required"
	ReasonAccessDenied           FailureReason = "access_denied"
	ReasonServerError            FailureReason = "server_error"
)

// AccessGrant is a short-lived authorization result for one activity.
// A grant is single-use in intent: the portal never caches or reuses a
// returned URL — every start of an activity requests a fresh grant.
type AccessGrant struct {
	Success     bool
	ActivityURL string        // opaque, time-boxed; backend-issued, never constructed here
	Reason      FailureReason // set when Success is false
	// SetCookies carries any Set-Cookie header values returned alongside
	// the grant, verbatim. The HTTP boundary forwards them to the browser;
	// nothing in this package parses them.
	SetCookies []string
}

// Failure builds a failed AccessGrant with the given reason.
func Failure(reason FailureReason) AccessGrant {
	return AccessGrant{Success: false, Reason: reason}
}

// Route is where the UI sends the user after a failed grant.
type Route string

// Routes a failed grant can resolve to.
const (
	RouteSignUp  Route = "/signup"
	RoutePricing Route = "/pricing"
)

// RouteFor maps a failure reason and the caller's authentication state to
// the page the user is sent to. Anonymous callers always go to sign-up;
// authenticated callers go to pricing (authentication_required should not
// occur for them, but maps to pricing rather than bouncing a logged-in
// user to sign-up).
func RouteFor(reason FailureReason, authenticated bool) Route {
	if !authenticated {
		return RouteSignUp
	}
	return RoutePricing
}
