package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"tunelingo/internal/domain/account"
)

// AccountStoreForAdminLogin defines the store interface needed by AdminLogin.
type AccountStoreForAdminLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// AdminLoginInput carries input for the admin login orchestrator.
type AdminLoginInput struct {
	Email    string
	Password string
}

// AdminLoginResult carries the result of a successful admin login.
type AdminLoginResult struct {
	AccountID string
	Email     string
	Role      string
}

// AdminLoginDeps holds dependencies for AdminLogin.
type AdminLoginDeps struct {
	AccountStore AccountStoreForAdminLogin
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteAdminLogin validates staff credentials for the admin surface.
// Member sign-in goes through the identity provider, not through here.
// PRE: Valid email and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteAdminLogin(ctx context.Context, input AdminLoginInput, deps AdminLoginDeps) (AdminLoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return AdminLoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "admin_login_failed", "email", input.Email, "reason", "not_found")
		return AdminLoginResult{}, ErrInvalidCredentials
	}

	// Check if account is locked
	if acct.IsLocked() {
		slog.Info("auth_event", "event", "admin_login_blocked", "email", input.Email, "reason", "locked")
		return AdminLoginResult{}, ErrAccountLocked
	}

	// Verify password
	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin()
		_ = deps.AccountStore.Save(ctx, acct)
		slog.Info("auth_event", "event", "admin_login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return AdminLoginResult{}, ErrInvalidCredentials
	}

	// Successful login resets failed attempts
	acct.ResetFailedLogins()
	_ = deps.AccountStore.Save(ctx, acct)

	slog.Info("auth_event", "event", "admin_login_success", "email", input.Email, "role", acct.Role)

	return AdminLoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
	}, nil
}
