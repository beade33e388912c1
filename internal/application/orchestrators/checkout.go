package orchestrators

import (
	"context"
	"errors"
	"log/slog"
)

// BillingClient creates hosted checkout and billing-portal sessions.
type BillingClient interface {
	CreateCheckoutSession(ctx context.Context, token, plan, successURL, cancelURL string) (string, error)
	PortalURL(ctx context.Context, token, returnURL string) (string, error)
}

// Plans the portal offers at checkout.
const (
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Checkout errors.
var (
	ErrUnknownPlan        = errors.New("unknown subscription plan")
	ErrBillingUnavailable = errors.New("billing is temporarily unavailable")
)

// CheckoutInput carries input for the checkout orchestrator.
type CheckoutInput struct {
	Plan       string
	SuccessURL string
	CancelURL  string
}

// CheckoutDeps holds dependencies for checkout.
type CheckoutDeps struct {
	Billing BillingClient
}

// ExecuteCheckout creates a hosted checkout session for the member.
// PRE: caller is authenticated; an already-subscribed member is allowed
// through (the backend handles plan changes)
// POST: Returns the URL the browser is redirected to
func ExecuteCheckout(ctx context.Context, token string, input CheckoutInput, deps CheckoutDeps) (string, error) {
	if input.Plan != PlanMonthly && input.Plan != PlanAnnual {
		return "", ErrUnknownPlan
	}

	url, err := deps.Billing.CreateCheckoutSession(ctx, token, input.Plan, input.SuccessURL, input.CancelURL)
	if err != nil {
		slog.Warn("billing_event", "event", "checkout_failed", "plan", input.Plan, "error", err)
		return "", ErrBillingUnavailable
	}
	return url, nil
}

// ExecuteBillingPortal creates a billing-portal session for the member.
// PRE: caller is authenticated
// POST: Returns the URL the browser is redirected to
func ExecuteBillingPortal(ctx context.Context, token, returnURL string, deps CheckoutDeps) (string, error) {
	url, err := deps.Billing.PortalURL(ctx, token, returnURL)
	if err != nil {
		slog.Warn("billing_event", "event", "portal_failed", "error", err)
		return "", ErrBillingUnavailable
	}
	return url, nil
}
