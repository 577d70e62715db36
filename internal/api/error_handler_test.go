package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"invalid input", fmt.Errorf("%w: username is required", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input: username is required"},
		{"duplicate", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"unknown user", domain.ErrUnknownUser, http.StatusUnauthorized, "invalid credentials"},
		{"wrong password", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"session", fmt.Errorf("verify: %w", domain.ErrInvalidSession), http.StatusUnauthorized, "invalid or missing session"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"note not found", domain.ErrNoteNotFound, http.StatusNotFound, "note category not found"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
		{"internal wrapping a sentinel", fmt.Errorf("op: %w: %w", domain.ErrInternal, domain.ErrUserNotFound), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tc.message, body["error"])
		})
	}
}

func TestHTTPErrorHandler_DoesNotLeakCause(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/sessions/register", nil), rec)

	cause := errors.New("mongo: connection reset by peer")
	NewHTTPErrorHandler(zerolog.New(&logs))(fmt.Errorf("register: %w: %w", domain.ErrInternal, cause), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
	assert.Contains(t, logs.String(), "connection reset by peer")
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.NoContent(http.StatusNoContent))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
