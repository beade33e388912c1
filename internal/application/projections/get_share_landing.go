package projections

import (
	"context"
	"time"

	"tunelingo/internal/domain/entitlement"
	"tunelingo/internal/domain/sharelink"
)

// ShareValidator checks a share code against the backend.
type ShareValidator interface {
	ValidateShareCode(ctx context.Context, code string) (sharelink.Summary, sharelink.InvalidReason)
}

// GetShareLandingQuery carries query parameters.
type GetShareLandingQuery struct {
	Code    string
	Session entitlement.Session
}

// GetShareLandingResult carries the query result. Exactly one of Valid or
// Message is meaningful.
type GetShareLandingResult struct {
	Valid    bool
	Summary  sharelink.Summary
	Decision entitlement.Decision // how the viewer may open the shared activity
	Message  string               // user-facing text when the code is invalid
	Reason   sharelink.InvalidReason
}

// GetShareLandingDeps holds dependencies for GetShareLanding.
type GetShareLandingDeps struct {
	Shares  ShareValidator
	Catalog CatalogSource
	Now     func() time.Time // nil means time.Now
}

// QueryGetShareLanding validates a share code and, when valid, resolves the
// viewer's right to open the shared activity. Expiry is also checked locally
// so a summary cached between validation and render cannot outlive its link.
// PRE: Code comes from the URL and may be empty or garbage
// POST: invalid codes produce a distinct message per reason, never an error
func QueryGetShareLanding(ctx context.Context, query GetShareLandingQuery, deps GetShareLandingDeps) (GetShareLandingResult, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	summary, reason := deps.Shares.ValidateShareCode(ctx, query.Code)
	if reason != "" {
		return GetShareLandingResult{
			Message: sharelink.Message(reason),
			Reason:  reason,
		}, nil
	}

	if summary.Expired(now) {
		return GetShareLandingResult{
			Message: sharelink.Message(sharelink.ReasonExpired),
			Reason:  sharelink.ReasonExpired,
		}, nil
	}

	// Prefer the snapshot's copy of the activity for the decision; the
	// summary alone cannot tell free from paid.
	decision := entitlement.RequiresLogin
	if a, ok := deps.Catalog.ByID(summary.ActivityID); ok {
		decision = entitlement.Resolve(a, query.Session)
	}

	return GetShareLandingResult{
		Valid:    true,
		Summary:  summary,
		Decision: decision,
	}, nil
}
