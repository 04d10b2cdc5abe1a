package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"orderhub/gateway/internal/middleware"
	"orderhub/pkg/apperr"
	loggingmw "orderhub/pkg/middleware/logging"
)

type Deps struct {
	AuthURL  string
	UserURL  string
	OrderURL string

	JWTSecret []byte
	Logger    *slog.Logger
}

// openEndpoints is the fixed allow-list served without authentication. The
// exists probe stays open because the order fallback path uses it without a
// user context.
var openEndpoints = middleware.OpenEndpoints{
	Exact: []string{
		"/health/live",
		"/health/ready",
	},
	Prefix: []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
		"/api/v1/users/exists/",
	},
}

func Register(e *echo.Echo, d *Deps) error {
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(d.Logger)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common() {
		e.Use(m)
	}
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(middleware.EdgeAuth(d.JWTSecret, openEndpoints))

	authProxy, err := newProxy(d.AuthURL, "/api/v1")
	if err != nil {
		return err
	}
	userProxy, err := newProxy(d.UserURL, "/api/v1")
	if err != nil {
		return err
	}
	orderProxy, err := newProxy(d.OrderURL, "/api/v1")
	if err != nil {
		return err
	}

	e.Any("/api/v1/auth", authProxy)
	e.Any("/api/v1/auth/*", authProxy)
	e.Any("/api/v1/users", userProxy)
	e.Any("/api/v1/users/*", userProxy)
	e.Any("/api/v1/orders", orderProxy)
	e.Any("/api/v1/orders/*", orderProxy)

	return nil
}
