package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notekeeper/notes-api/internal/core/domain"
	"github.com/notekeeper/notes-api/internal/core/ports"
)

// SessionHandler serves the /api/sessions routes.
type SessionHandler struct {
	service ports.SessionService
	cookie  CookieOptions
}

func NewSessionHandler(service ports.SessionService, cookie CookieOptions) *SessionHandler {
	return &SessionHandler{service: service, cookie: cookie}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type registerPayload struct {
	ID string `json:"id"`
}

type orderRequest struct {
	OrderCategories string `json:"orderCategories" validate:"required"`
}

type deleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// Register creates a new account. The caller is not logged in.
//
// @Summary      Register a new user
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      200   {object}  payloadResponse{payload=registerPayload}
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/sessions/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.service.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payload(registerPayload{ID: id}))
}

// Login verifies credentials and delivers the session token in a cookie.
//
// @Summary      Login
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      200   {object}  messageResponse
// @Header       200   {string}  Set-Cookie  "HttpOnly session cookie"
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/sessions/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.cookie.set(c, token)
	return c.JSON(http.StatusOK, message(fmt.Sprintf("user %s logged in", req.Username)))
}

// Current returns the profile of the logged-in user, or a null payload for an
// anonymous or stale session.
//
// @Summary      Current user
// @Tags         sessions
// @Produce      json
// @Success      200  {object}  payloadResponse{payload=ports.UserProfile}
// @Failure      500  {object}  ErrorResponse
// @Router       /api/sessions/current [get]
func (h *SessionHandler) Current(c echo.Context) error {
	profile, err := h.service.CurrentUser(c.Request().Context(), subjectFromContext(c))
	if err != nil {
		return err
	}
	if profile == nil {
		return c.JSON(http.StatusOK, payload(nil))
	}
	return c.JSON(http.StatusOK, payload(profile))
}

// Logout discards the session cookie. The token itself stays valid until it
// expires.
//
// @Summary      Logout
// @Tags         sessions
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/sessions/logout [get]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.service.Logout(c.Request().Context(), subjectFromContext(c))
	h.cookie.clear(c)
	return c.JSON(http.StatusOK, message("user logged out"))
}

// UpdateOrder changes how the user's note categories are ordered.
//
// @Summary      Update category order
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "User ID"
// @Param        body  body      orderRequest  true  "date, date_desc, title or title_desc"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/sessions/{id}/order [put]
func (h *SessionHandler) UpdateOrder(c echo.Context) error {
	var req orderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.UpdateOrderPreference(c.Request().Context(), c.Param("id"), req.OrderCategories); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, message("order updated"))
}

// DeleteAccount removes the account and every note it owns after re-checking
// the credentials, then discards the session cookie.
//
// @Summary      Delete account
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id        path      string                true  "User ID"
// @Param        username  query     string                true  "Username of the account"
// @Param        body      body      deleteAccountRequest  true  "Current password"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      403       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/sessions/{id} [delete]
func (h *SessionHandler) DeleteAccount(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	var req deleteAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.DeleteAccount(c.Request().Context(), c.Param("id"), username, req.Password); err != nil {
		return err
	}

	h.cookie.clear(c)
	return c.JSON(http.StatusOK, message("user deleted"))
}
