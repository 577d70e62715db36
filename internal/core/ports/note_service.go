package ports

import (
	"context"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

// NoteService exposes the owner-scoped note operations.
type NoteService interface {
	CreateCategory(ctx context.Context, ownerID, title string) (*domain.NoteCategory, error)
	AddItem(ctx context.Context, ownerID, categoryID, text string) (*domain.NoteItem, error)
	// List returns the owner's categories sorted by the owner's order preference.
	List(ctx context.Context, ownerID string) ([]domain.NoteCategory, error)
}
