package ports

import (
	"context"
	"time"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

// UserProfile is the outward projection of a user. It never carries the password hash.
type UserProfile struct {
	ID              string                 `json:"_id"`
	Username        string                 `json:"username"`
	OrderCategories domain.OrderPreference `json:"orderCategories"`
	CreatedAt       time.Time              `json:"created_at"`
}

// SessionService orchestrates registration, login and account lifecycle.
type SessionService interface {
	Register(ctx context.Context, username, password string) (string, error)
	// Login returns a signed session token for the transport layer to deliver.
	Login(ctx context.Context, username, password string) (string, error)
	// CurrentUser returns nil without error when subjectID is empty or unknown.
	CurrentUser(ctx context.Context, subjectID string) (*UserProfile, error)
	Logout(ctx context.Context, subjectID string)
	UpdateOrderPreference(ctx context.Context, id, value string) error
	DeleteAccount(ctx context.Context, id, username, password string) error
}
