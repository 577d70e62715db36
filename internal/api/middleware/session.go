package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/notekeeper/notes-api/internal/api/handler"
	"github.com/notekeeper/notes-api/internal/core/domain"
	"github.com/notekeeper/notes-api/internal/core/ports"
)

// Session resolves the session subject from the configured cookie, falling
// back to an "Authorization: Bearer" header for non-browser clients. A stale
// cookie does not shadow a valid header.
type Session struct {
	issuer     ports.SessionIssuer
	cookieName string
}

func NewSession(issuer ports.SessionIssuer, cookieName string) *Session {
	if cookieName == "" {
		cookieName = handler.DefaultCookieName
	}
	return &Session{issuer: issuer, cookieName: cookieName}
}

// Require rejects requests without a valid session with 401 and stores the
// subject under handler.SubjectKey otherwise.
func (s *Session) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, err := s.subject(c.Request())
			if err != nil {
				return err
			}

			c.Set(handler.SubjectKey, subject)
			return next(c)
		}
	}
}

// Optional stores the subject when a valid session is present and otherwise
// lets the request through anonymously.
func (s *Session) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if subject, err := s.subject(c.Request()); err == nil {
				c.Set(handler.SubjectKey, subject)
			}
			return next(c)
		}
	}
}

// subject verifies each presented token in order and returns the first valid
// subject. With no usable token it returns the last verification error.
func (s *Session) subject(r *http.Request) (string, error) {
	err := domain.ErrInvalidSession
	for _, token := range s.tokens(r) {
		subject, verr := s.issuer.Verify(token)
		if verr == nil {
			return subject, nil
		}
		err = verr
	}
	return "", err
}

func (s *Session) tokens(r *http.Request) []string {
	var tokens []string
	if ck, err := r.Cookie(s.cookieName); err == nil && ck.Value != "" {
		tokens = append(tokens, ck.Value)
	}

	authHeader := r.Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
