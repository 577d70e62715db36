package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/notekeeper/notes-api/internal/core/domain"
	"github.com/notekeeper/notes-api/internal/core/ports"
)

type stubSessionService struct {
	registerFn func(ctx context.Context, username, password string) (string, error)
	loginFn    func(ctx context.Context, username, password string) (string, error)
	currentFn  func(ctx context.Context, subjectID string) (*ports.UserProfile, error)
	orderFn    func(ctx context.Context, id, value string) error
	deleteFn   func(ctx context.Context, id, username, password string) error
	loggedOut  []string
}

func (s *stubSessionService) Register(ctx context.Context, username, password string) (string, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubSessionService) Login(ctx context.Context, username, password string) (string, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessionService) CurrentUser(ctx context.Context, subjectID string) (*ports.UserProfile, error) {
	return s.currentFn(ctx, subjectID)
}

func (s *stubSessionService) Logout(_ context.Context, subjectID string) {
	s.loggedOut = append(s.loggedOut, subjectID)
}

func (s *stubSessionService) UpdateOrderPreference(ctx context.Context, id, value string) error {
	return s.orderFn(ctx, id, value)
}

func (s *stubSessionService) DeleteAccount(ctx context.Context, id, username, password string) error {
	return s.deleteFn(ctx, id, username, password)
}

var testCookie = CookieOptions{Name: "notes_session", Secure: true, SameSite: http.SameSiteNoneMode}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testCookie.Name {
			return ck
		}
	}
	t.Fatalf("expected %s cookie in response", testCookie.Name)
	return nil
}

func TestSessionHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		registerFn: func(_ context.Context, username, password string) (string, error) {
			if username != "alice" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "u1", nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/sessions/register", `{"username":"alice","password":"pw1"}`), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["status"] != "success" {
		t.Fatalf("unexpected status: %v", resp["status"])
	}
	p, ok := resp["payload"].(map[string]any)
	if !ok || p["id"] != "u1" {
		t.Fatalf("unexpected payload: %+v", resp["payload"])
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("register must not log the user in")
	}
}

func TestSessionHandler_Register_MissingFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		registerFn: func(context.Context, string, string) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	for _, body := range []string{`{"username":"bob"}`, `{"password":"pw"}`, "not-json"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/sessions/register", body), rec)

		if err := h.Register(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("body %q: expected ErrInvalidInput, got %v", body, err)
		}
	}
}

func TestSessionHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		registerFn: func(context.Context, string, string) (string, error) {
			return "", domain.ErrUserExists
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/sessions/register", `{"username":"bob","password":"pw"}`), rec)

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSessionHandler_Login_SetsCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		loginFn: func(_ context.Context, username, password string) (string, error) {
			if username != "alice" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "token123", nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/sessions/login", `{"username":"alice","password":"pw1"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ck := sessionCookie(t, rec)
	if ck.Value != "token123" {
		t.Fatalf("expected token in cookie, got %q", ck.Value)
	}
	if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteNoneMode || ck.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", ck)
	}
	if ck.MaxAge != 0 {
		t.Fatalf("expected no Max-Age, got %d", ck.MaxAge)
	}

	resp := decodeBody(t, rec)
	if resp["status"] != "success" || resp["message"] == "" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "token123") {
		t.Fatalf("token must only travel in the cookie")
	}
}

func TestSessionHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		loginFn: func(context.Context, string, string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/sessions/login", `{"username":"alice","password":"bad"}`), rec)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie expected on failed login")
	}
}

func TestSessionHandler_Current(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		currentFn: func(_ context.Context, subjectID string) (*ports.UserProfile, error) {
			if subjectID != "u1" {
				t.Fatalf("unexpected subject: %q", subjectID)
			}
			return &ports.UserProfile{ID: "u1", Username: "alice", OrderCategories: domain.OrderByDate}, nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/sessions/current", nil), rec)
	c.Set(SubjectKey, "u1")

	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeBody(t, rec)
	p, ok := resp["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload object, got %+v", resp["payload"])
	}
	if p["_id"] != "u1" || p["username"] != "alice" || p["orderCategories"] != "date" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if _, leaked := p["password"]; leaked {
		t.Fatalf("profile must not carry a password")
	}
}

func TestSessionHandler_Current_Anonymous(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		currentFn: func(_ context.Context, subjectID string) (*ports.UserProfile, error) {
			if subjectID != "" {
				t.Fatalf("expected empty subject, got %q", subjectID)
			}
			return nil, nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/sessions/current", nil), rec)

	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"payload":null`) {
		t.Fatalf("expected null payload, got %s", rec.Body.String())
	}
}

func TestSessionHandler_Logout_ClearsCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/sessions/logout", nil), rec)
	c.Set(SubjectKey, "u1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	ck := sessionCookie(t, rec)
	if ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", ck)
	}
	if len(stub.loggedOut) != 1 || stub.loggedOut[0] != "u1" {
		t.Fatalf("expected logout for u1, got %v", stub.loggedOut)
	}
}

func TestSessionHandler_UpdateOrder(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		orderFn: func(_ context.Context, id, value string) error {
			if id != "u1" || value != "title" {
				t.Fatalf("unexpected args: %s %s", id, value)
			}
			return nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/sessions/u1/order", `{"orderCategories":"title"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.UpdateOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSessionHandler_UpdateOrder_Missing(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		orderFn: func(context.Context, string, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/sessions/u1/order", `{}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	err := h.UpdateOrder(c)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "orderCategories is required") {
		t.Fatalf("expected field name in message, got %q", err.Error())
	}
}

func TestSessionHandler_DeleteAccount(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		deleteFn: func(_ context.Context, id, username, password string) error {
			if id != "u1" || username != "alice" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s %s", id, username, password)
			}
			return nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodDelete, "/api/sessions/u1?username=alice", `{"password":"pw1"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.DeleteAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ck := sessionCookie(t, rec); ck.MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", ck)
	}
}

func TestSessionHandler_DeleteAccount_MissingUsername(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		deleteFn: func(context.Context, string, string, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodDelete, "/api/sessions/u1", `{"password":"pw1"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.DeleteAccount(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSessionHandler_DeleteAccount_InvalidCredentialsKeepsCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		deleteFn: func(context.Context, string, string, string) error {
			return domain.ErrInvalidCredentials
		},
	}
	h := NewSessionHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodDelete, "/api/sessions/u1?username=alice", `{"password":"bad"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.DeleteAccount(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("cookie must not be cleared on failure")
	}
}

func TestParseSameSite(t *testing.T) {
	cases := map[string]http.SameSite{
		"lax":    http.SameSiteLaxMode,
		"Strict": http.SameSiteStrictMode,
		"none":   http.SameSiteNoneMode,
		"":       http.SameSiteNoneMode,
	}
	for in, want := range cases {
		if got := ParseSameSite(in); got != want {
			t.Fatalf("ParseSameSite(%q) = %v, want %v", in, got, want)
		}
	}
}
