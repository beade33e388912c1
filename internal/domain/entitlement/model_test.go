package entitlement_test

import (
	"testing"

	"tunelingo/internal/domain/activity"
	"tunelingo/internal/domain/entitlement"
)

// TestResolve_Totality exercises every session combination against free and
// premium activities; exactly three distinct outcomes are possible.
func TestResolve_Totality(t *testing.T) {
	tests := []struct {
		name          string
		free          bool
		authenticated bool
		subscribed    bool
		want          entitlement.Decision
	}{
		{name: "free anonymous", free: true, want: entitlement.Playable},
		{name: "free authenticated unsubscribed", free: true, authenticated: true, want: entitlement.Playable},
		{name: "free authenticated subscribed", free: true, authenticated: true, subscribed: true, want: entitlement.Playable},
		// Subscribed-but-anonymous cannot happen in practice; the resolver
		// must still be defined for it.
		{name: "free anonymous subscribed", free: true, subscribed: true, want: entitlement.Playable},
		{name: "premium anonymous", free: false, want: entitlement.RequiresLogin},
		{name: "premium anonymous subscribed", free: false, subscribed: true, want: entitlement.RequiresLogin},
		{name: "premium authenticated unsubscribed", free: false, authenticated: true, want: entitlement.RequiresSubscription},
		{name: "premium authenticated subscribed", free: false, authenticated: true, subscribed: true, want: entitlement.Playable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := activity.Activity{ID: "a1", Free: tt.free}
			s := entitlement.Session{Authenticated: tt.authenticated, Subscribed: tt.subscribed}
			if got := entitlement.Resolve(a, s); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestResolve_SessionTransition verifies the decision flips when the same
// activity is re-resolved after login and after subscribing.
func TestResolve_SessionTransition(t *testing.T) {
	premium := activity.Activity{ID: "a1", Free: false}

	if got := entitlement.Resolve(premium, entitlement.Session{}); got != entitlement.RequiresLogin {
		t.Fatalf("anonymous: got %v, want %v", got, entitlement.RequiresLogin)
	}
	if got := entitlement.Resolve(premium, entitlement.Session{Authenticated: true}); got != entitlement.RequiresSubscription {
		t.Fatalf("after login: got %v, want %v", got, entitlement.RequiresSubscription)
	}
	if got := entitlement.Resolve(premium, entitlement.Session{Authenticated: true, Subscribed: true}); got != entitlement.Playable {
		t.Fatalf("after subscribe: got %v, want %v", got, entitlement.Playable)
	}
}
