package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"tunelingo/internal/domain/account"
)

// mockAccountStore implements AccountStoreForAdminLogin.
type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: map[string]account.Account{}}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[email]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.Email] = a
	return nil
}

func adminAccount(t *testing.T, email, password string) account.Account {
	t.Helper()
	a := account.Account{ID: "a1", Email: email, Role: account.RoleAdmin, CreatedAt: time.Now()}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("set password: %v", err)
	}
	return a
}

func TestExecuteAdminLogin(t *testing.T) {
	store := newMockAccountStore()
	store.accounts["admin@tunelingo.app"] = adminAccount(t, "admin@tunelingo.app", "correct-horse-battery")
	deps := AdminLoginDeps{AccountStore: store}

	result, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{
		Email:    "admin@tunelingo.app",
		Password: "correct-horse-battery",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccountID != "a1" || result.Role != account.RoleAdmin {
		t.Errorf("result = %+v", result)
	}
}

func TestExecuteAdminLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	store.accounts["admin@tunelingo.app"] = adminAccount(t, "admin@tunelingo.app", "correct-horse-battery")
	deps := AdminLoginDeps{AccountStore: store}

	_, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{
		Email:    "admin@tunelingo.app",
		Password: "wrong-password-here",
	}, deps)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}

	if store.accounts["admin@tunelingo.app"].FailedLogins != 1 {
		t.Errorf("failed logins = %d, want 1", store.accounts["admin@tunelingo.app"].FailedLogins)
	}
}

func TestExecuteAdminLogin_UnknownEmail(t *testing.T) {
	deps := AdminLoginDeps{AccountStore: newMockAccountStore()}

	_, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{
		Email:    "nobody@tunelingo.app",
		Password: "whatever-password",
	}, deps)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestExecuteAdminLogin_EmptyInput(t *testing.T) {
	deps := AdminLoginDeps{AccountStore: newMockAccountStore()}

	if _, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{}, deps); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestExecuteAdminLogin_Locked(t *testing.T) {
	store := newMockAccountStore()
	a := adminAccount(t, "admin@tunelingo.app", "correct-horse-battery")
	a.LockedUntil = time.Now().Add(10 * time.Minute)
	store.accounts["admin@tunelingo.app"] = a
	deps := AdminLoginDeps{AccountStore: store}

	_, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{
		Email:    "admin@tunelingo.app",
		Password: "correct-horse-battery",
	}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("error = %v, want ErrAccountLocked", err)
	}
}

func TestExecuteAdminLogin_LocksAfterRepeatedFailures(t *testing.T) {
	store := newMockAccountStore()
	store.accounts["admin@tunelingo.app"] = adminAccount(t, "admin@tunelingo.app", "correct-horse-battery")
	deps := AdminLoginDeps{AccountStore: store}

	for i := 0; i < 5; i++ {
		_, _ = ExecuteAdminLogin(context.Background(), AdminLoginInput{
			Email:    "admin@tunelingo.app",
			Password: "wrong-password-here",
		}, deps)
	}

	_, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{
		Email:    "admin@tunelingo.app",
		Password: "correct-horse-battery",
	}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("error = %v, want ErrAccountLocked", err)
	}
}

func TestExecuteAdminLogin_ResetsFailuresOnSuccess(t *testing.T) {
	store := newMockAccountStore()
	a := adminAccount(t, "admin@tunelingo.app", "correct-horse-battery")
	a.FailedLogins = 3
	store.accounts["admin@tunelingo.app"] = a
	deps := AdminLoginDeps{AccountStore: store}

	if _, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{
		Email:    "admin@tunelingo.app",
		Password: "correct-horse-battery",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.accounts["admin@tunelingo.app"].FailedLogins != 0 {
		t.Errorf("failed logins = %d, want 0", store.accounts["admin@tunelingo.app"].FailedLogins)
	}
}
