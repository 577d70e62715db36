package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notekeeper/notes-api/internal/core/ports"
)

// NoteHandler serves the /api/notes routes. The owner in the path has already
// been matched against the session subject by middleware.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

type createCategoryRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type createCategoryPayload struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type addItemRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// List returns the owner's categories in the owner's preferred order.
//
// @Summary      List note categories
// @Tags         notes
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  payloadResponse{payload=[]domain.NoteCategory}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/notes/{id} [get]
func (h *NoteHandler) List(c echo.Context) error {
	categories, err := h.service.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payload(categories))
}

// CreateCategory adds an empty category for the owner.
//
// @Summary      Create note category
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      createCategoryRequest  true  "Category title"
// @Success      201   {object}  payloadResponse{payload=createCategoryPayload}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/notes/category/{id} [post]
func (h *NoteHandler) CreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.service.CreateCategory(c.Request().Context(), c.Param("id"), req.Title)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, payload(createCategoryPayload{ID: category.ID, Timestamp: category.Timestamp}))
}

// AddItem appends an item to one of the owner's categories.
//
// @Summary      Add note item
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "User ID"
// @Param        body  body      addItemRequest  true  "Target category and text"
// @Success      201   {object}  payloadResponse{payload=domain.NoteItem}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/notes/{id} [post]
func (h *NoteHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.service.AddItem(c.Request().Context(), c.Param("id"), req.CategoryID, req.Text)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, payload(item))
}
