package ports

import (
	"context"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

// NoteRepository defines persistence operations for note categories keyed by owner.
type NoteRepository interface {
	CreateCategory(ctx context.Context, category *domain.NoteCategory) (*domain.NoteCategory, error)
	// AddItem appends an item to a category owned by ownerID. A category that
	// does not exist or belongs to someone else yields domain.ErrNoteNotFound.
	AddItem(ctx context.Context, ownerID, categoryID string, item domain.NoteItem) (*domain.NoteItem, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.NoteCategory, error)
	// DeleteByOwner removes every category owned by ownerID and returns how many were removed.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
