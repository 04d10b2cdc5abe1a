package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"orderhub/pkg/apperr"
	"orderhub/pkg/logging"
	"orderhub/services/auth/internal/service"
	"orderhub/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	l.Info("login successful", "username", req.Username)
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.LogoutRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Validate(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	const bearer = "Bearer "
	if !strings.HasPrefix(authHeader, bearer) {
		return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: false})
	}

	res := h.Svc.Validate(ctx, strings.TrimPrefix(authHeader, bearer))
	return c.JSON(http.StatusOK, res)
}
