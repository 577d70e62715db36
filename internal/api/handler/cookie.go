package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// DefaultCookieName is used when no session cookie name is configured.
const DefaultCookieName = "notes_session"

// CookieOptions describes the browser cookie that carries the session token.
// The cookie has no Max-Age: the token's own expiry bounds the session.
type CookieOptions struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps a config value (none, lax, strict) to http.SameSite.
// Anything else yields SameSiteNoneMode.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultCookieName
	}
	return o.Name
}

func (o CookieOptions) set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     o.name(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	})
}

// clear expires the cookie with the same attributes it was issued with, which
// browsers require before they drop it.
func (o CookieOptions) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     o.name(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
