package newsletter

import (
	"context"

	domain "tunelingo/internal/domain/newsletter"
)

// Store persists newsletter subscriber state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (domain.Subscriber, error)
	Save(ctx context.Context, value domain.Subscriber) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Subscriber, error)
	Count(ctx context.Context, status string) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
}
