package account

import (
	"context"

	domain "tunelingo/internal/domain/account"
)

// Store persists admin Account state. Member identity lives at the
// identity provider; only staff accounts for the admin surface are local.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	// Delete refuses to remove the last admin account (ErrLastAdmin).
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
