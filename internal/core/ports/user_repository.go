package ports

import (
	"context"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Absent records are reported as domain.ErrUserNotFound.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts the user and returns it with its assigned ID. A username
	// collision yields domain.ErrUserExists; the storage layer enforces this
	// atomically.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateOrderCategories(ctx context.Context, id string, pref domain.OrderPreference) error
	DeleteByID(ctx context.Context, id string) error
}
