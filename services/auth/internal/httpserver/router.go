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
	AuthHandler *AuthHTTP
	Logger      *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(d.Logger)
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(principal.BindFromHeaders())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/validate", d.AuthHandler.Validate)
}
