package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

// SubjectKey is the echo context key under which the session middleware stores
// the verified user id.
const SubjectKey = "user_id"

// subjectFromContext returns the verified session subject, or "" for an
// anonymous request.
func subjectFromContext(c echo.Context) string {
	subject, _ := c.Get(SubjectKey).(string)
	return subject
}

// bindAndValidate decodes the request body into req and runs the struct
// validator. Both failures surface as domain.ErrInvalidInput.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.ErrInvalidInput
	}
	return c.Validate(req)
}
