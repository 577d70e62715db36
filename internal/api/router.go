package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/notekeeper/notes-api/docs"
	"github.com/notekeeper/notes-api/internal/api/handler"
	"github.com/notekeeper/notes-api/internal/api/middleware"
	"github.com/notekeeper/notes-api/internal/core/ports"
)

const bodyLimit = "64K"

// Dependencies carries everything the router needs. Services are already
// wired to their repositories by the caller.
type Dependencies struct {
	Sessions    ports.SessionService
	Notes       ports.NoteService
	Issuer      ports.SessionIssuer
	Cookie      handler.CookieOptions
	CORSOrigins []string
	Readiness   *handler.ReadinessHandler
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	if len(deps.CORSOrigins) > 0 {
		// Browsers only send the session cookie cross-site with credentials allowed.
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	session := middleware.NewSession(deps.Issuer, deps.Cookie.Name)
	owner := middleware.Owner("id")

	// --- Session routes ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.Cookie)
	sessions := e.Group("/api/sessions")
	sessions.POST("/register", sessionHandler.Register)
	sessions.POST("/login", sessionHandler.Login)
	sessions.GET("/current", sessionHandler.Current, session.Optional())
	sessions.GET("/logout", sessionHandler.Logout, session.Optional())
	sessions.PUT("/:id/order", sessionHandler.UpdateOrder, session.Require(), owner)
	sessions.DELETE("/:id", sessionHandler.DeleteAccount, session.Require(), owner)

	// --- Note routes (owner only) ---
	noteHandler := handler.NewNoteHandler(deps.Notes)
	notes := e.Group("/api/notes")
	notes.GET("/:id", noteHandler.List, session.Require(), owner)
	notes.POST("/category/:id", noteHandler.CreateCategory, session.Require(), owner)
	notes.POST("/:id", noteHandler.AddItem, session.Require(), owner)

	// --- Operational routes (no session required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
