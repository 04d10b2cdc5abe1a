package principal

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"orderhub/pkg/apperr"
)

const ctxPrincipal = "principal"

// BindFromHeaders runs once per request. If the gateway identity headers are
// present and no principal is bound yet, it binds one into the echo context
// and the request context. The binding is removed unconditionally when the
// request finishes, error paths included, so a pooled worker never exposes a
// previous request's identity.
func BindFromHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer c.Set(ctxPrincipal, nil)

			h := c.Request().Header
			username := h.Get(HeaderUserName)
			rolesHeader := h.Get(HeaderUserRoles)

			if username != "" && rolesHeader != "" && Current(c) == nil {
				var userID uint
				if raw := h.Get(HeaderUserID); raw != "" {
					if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
						userID = uint(n)
					}
				}

				p := &Principal{
					UserID:   userID,
					Username: username,
					Roles:    ParseRoles(rolesHeader),
				}
				c.Set(ctxPrincipal, p)
				c.SetRequest(c.Request().WithContext(IntoContext(c.Request().Context(), p)))
			}

			return next(c)
		}
	}
}

// Current returns the principal bound to this request, or nil.
func Current(c echo.Context) *Principal {
	p, _ := c.Get(ctxPrincipal).(*Principal)
	return p
}

// RequireRoles guards a route: no principal at all is unauthorized, a
// principal lacking every listed role is forbidden.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Current(c)
			if p == nil {
				return apperr.ErrUnauthorized
			}
			if !p.HasAnyRole(roles...) {
				return apperr.ErrForbidden
			}
			return next(c)
		}
	}
}
