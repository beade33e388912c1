package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"tunelingo/internal/adapters/identity"
)

// CodeExchanger trades an authorization code for provider tokens.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (identity.TokenSet, error)
	Userinfo(ctx context.Context, accessToken string) (identity.Profile, error)
}

// TokenVerifier validates ID tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken, expectedNonce string) (identity.Identity, error)
}

// MembershipChecker fetches subscription state from the backend.
type MembershipChecker interface {
	MembershipStatus(ctx context.Context, token string) (bool, error)
}

// OAuthLoginInput carries the callback parameters.
type OAuthLoginInput struct {
	Code  string
	Nonce string // bound to the session when the flow started
}

// OAuthLoginResult carries everything the session needs after sign-in.
type OAuthLoginResult struct {
	UserID     string
	Email      string
	Name       string
	Token      string // backend access token, held server-side only
	Subscribed bool
	FirstLogin bool
}

// OAuthLoginDeps holds dependencies for OAuthLogin.
type OAuthLoginDeps struct {
	Identity   CodeExchanger
	Verifier   TokenVerifier
	Membership MembershipChecker
}

// ErrLoginFailed is the single error surfaced for any sign-in failure.
// The specific cause is logged, never shown to the user.
var ErrLoginFailed = errors.New("sign-in failed")

// ExecuteOAuthLogin completes the authorization-code flow. The ID token
// is the identity source; userinfo fills in profile fields the token
// omits. Subscription state is fetched fresh, never assumed.
// PRE: input.Code came back on the registered redirect URI
// POST: Result identifies the member and their current subscription state
func ExecuteOAuthLogin(ctx context.Context, input OAuthLoginInput, deps OAuthLoginDeps) (OAuthLoginResult, error) {
	if input.Code == "" {
		return OAuthLoginResult{}, ErrLoginFailed
	}

	tokens, err := deps.Identity.Exchange(ctx, input.Code)
	if err != nil {
		slog.Warn("auth_event", "event", "oauth_exchange_failed", "error", err)
		return OAuthLoginResult{}, ErrLoginFailed
	}

	id, err := deps.Verifier.Verify(ctx, tokens.IDToken, input.Nonce)
	if err != nil {
		slog.Warn("auth_event", "event", "oauth_token_invalid", "error", err)
		return OAuthLoginResult{}, ErrLoginFailed
	}

	result := OAuthLoginResult{
		UserID: id.Subject,
		Email:  id.Email,
		Name:   id.Name,
		Token:  tokens.AccessToken,
	}

	// Profile fields missing from the token come from userinfo. A failure
	// here does not block sign-in.
	if result.Email == "" || result.Name == "" {
		profile, err := deps.Identity.Userinfo(ctx, tokens.AccessToken)
		if err != nil {
			slog.Warn("auth_event", "event", "oauth_userinfo_failed", "user_id", id.Subject, "error", err)
		} else {
			if result.Email == "" {
				result.Email = profile.Email
			}
			if result.Name == "" {
				result.Name = profile.Name
			}
		}
	}

	subscribed, err := deps.Membership.MembershipStatus(ctx, tokens.AccessToken)
	if err != nil {
		// A membership lookup failure degrades to unsubscribed; the next
		// refresh will correct it. It never blocks sign-in.
		slog.Warn("auth_event", "event", "membership_lookup_failed", "user_id", id.Subject, "error", err)
		subscribed = false
	}
	result.Subscribed = subscribed

	slog.Info("auth_event", "event", "oauth_login_success", "user_id", id.Subject, "subscribed", subscribed)
	return result, nil
}

// ExecuteRefreshMembership re-reads the member's subscription state.
// Called when the member returns from checkout or the billing portal so
// entitlements pick up the change without a fresh sign-in.
// PRE: token is the session's backend access token
// POST: Returns the current subscription flag
func ExecuteRefreshMembership(ctx context.Context, token string, deps OAuthLoginDeps) (bool, error) {
	subscribed, err := deps.Membership.MembershipStatus(ctx, token)
	if err != nil {
		slog.Warn("auth_event", "event", "membership_refresh_failed", "error", err)
		return false, err
	}
	slog.Info("auth_event", "event", "membership_refreshed", "subscribed", subscribed)
	return subscribed, nil
}
