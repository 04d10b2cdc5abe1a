package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"orderhub/pkg/apperr"
	loggingmw "orderhub/pkg/middleware/logging"
	"orderhub/pkg/principal"
)

type Deps struct {
	UserHandler *UserHTTP
	Logger      *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(d.Logger)
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(principal.BindFromHeaders())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	users := e.Group("/users")

	// Open internally: registration calls it before any identity exists, and
	// the order fallback path probes existence without a user context.
	users.POST("", d.UserHandler.Create)
	users.GET("/exists/:id", d.UserHandler.Exists)

	users.GET("/:id", d.UserHandler.Get,
		principal.RequireRoles(principal.RoleUser, principal.RoleManager, principal.RoleAdmin))
	users.PUT("/:id", d.UserHandler.Update,
		principal.RequireRoles(principal.RoleUser, principal.RoleManager, principal.RoleAdmin))
	users.GET("/email/:email", d.UserHandler.GetByEmail,
		principal.RequireRoles(principal.RoleManager, principal.RoleAdmin))
	users.GET("", d.UserHandler.List,
		principal.RequireRoles(principal.RoleAdmin))
	users.DELETE("/:id", d.UserHandler.Delete,
		principal.RequireRoles(principal.RoleAdmin))
}
