package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/notekeeper/notes-api/internal/api/handler"
	"github.com/notekeeper/notes-api/internal/core/domain"
)

// Owner allows the request only when the named path parameter equals the
// session subject. It must run after Session.Require.
func Owner(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, _ := c.Get(handler.SubjectKey).(string)
			if subject == "" {
				return domain.ErrInvalidSession
			}
			if c.Param(param) != subject {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
