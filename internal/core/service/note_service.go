package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/notekeeper/notes-api/internal/core/domain"
	"github.com/notekeeper/notes-api/internal/core/ports"
)

// NoteService implements ports.NoteService. Ownership is established by the
// caller (the session subject); every repository call is scoped to it.
type NoteService struct {
	notes ports.NoteRepository
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewNoteService(notes ports.NoteRepository, users ports.UserRepository, log zerolog.Logger) *NoteService {
	return &NoteService{
		notes: notes,
		users: users,
		log:   log.With().Str("component", "note_service").Logger(),
		now:   time.Now,
	}
}

func (s *NoteService) CreateCategory(ctx context.Context, ownerID, title string) (*domain.NoteCategory, error) {
	title = strings.TrimSpace(title)
	if ownerID == "" || title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	created, err := s.notes.CreateCategory(ctx, &domain.NoteCategory{
		OwnerID:   ownerID,
		Title:     title,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", ownerID).Msg("failed to create category")
		return nil, fmt.Errorf("create category: %w: %w", domain.ErrInternal, err)
	}

	s.log.Info().Str("user_id", ownerID).Str("category_id", created.ID).Msg("category created")
	return created, nil
}

func (s *NoteService) AddItem(ctx context.Context, ownerID, categoryID, text string) (*domain.NoteItem, error) {
	text = strings.TrimSpace(text)
	if ownerID == "" || categoryID == "" || text == "" {
		return nil, fmt.Errorf("%w: categoryId and text are required", domain.ErrInvalidInput)
	}

	item, err := s.notes.AddItem(ctx, ownerID, categoryID, domain.NoteItem{Text: text, Timestamp: s.now().UTC()})
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		s.log.Error().Err(err).Str("user_id", ownerID).Str("category_id", categoryID).Msg("failed to add item")
		return nil, fmt.Errorf("add item: %w: %w", domain.ErrInternal, err)
	}
	return item, nil
}

func (s *NoteService) List(ctx context.Context, ownerID string) ([]domain.NoteCategory, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("list categories: %w: %w", domain.ErrInternal, err)
	}

	categories, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", ownerID).Msg("failed to list categories")
		return nil, fmt.Errorf("list categories: %w: %w", domain.ErrInternal, err)
	}

	domain.SortCategories(categories, owner.OrderCategories)
	return categories, nil
}
