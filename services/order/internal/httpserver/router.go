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
	OrderHandler *OrderHTTP
	Logger       *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(d.Logger)
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(principal.BindFromHeaders())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	anyRole := principal.RequireRoles(principal.RoleUser, principal.RoleManager, principal.RoleAdmin)
	elevated := principal.RequireRoles(principal.RoleManager, principal.RoleAdmin)
	adminOnly := principal.RequireRoles(principal.RoleAdmin)

	orders := e.Group("/orders")

	orders.POST("", d.OrderHandler.Create, anyRole)
	orders.GET("/my", d.OrderHandler.ListMine, anyRole)
	orders.GET("/number/:orderNumber", d.OrderHandler.GetByNumber, anyRole)
	orders.GET("/:id", d.OrderHandler.Get, anyRole)
	orders.PUT("/:id", d.OrderHandler.Update, anyRole)
	orders.POST("/:id/cancel", d.OrderHandler.Cancel, anyRole)

	orders.GET("", d.OrderHandler.List, elevated)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, elevated)
	orders.GET("/statistics", d.OrderHandler.Statistics, elevated)
	orders.GET("/search", d.OrderHandler.Search, elevated)

	orders.DELETE("/:id", d.OrderHandler.Delete, adminOnly)
}
