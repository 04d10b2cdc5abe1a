package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"orderhub/pkg/apperr"
	"orderhub/pkg/principal"
	"orderhub/services/user/internal/repo"
	"orderhub/services/user/internal/service"
	"orderhub/services/user/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.ErrValidation.WithMessage("invalid id")
	}
	return uint(id), nil
}

func (h *UserHTTP) Create(c echo.Context) error {
	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// Get serves a user their own profile; managers and admins may read anyone's.
func (h *UserHTTP) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := ownerOrElevated(c, id); err != nil {
		return err
	}

	res, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) GetByEmail(c echo.Context) error {
	res, err := h.Svc.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) Exists(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	exists, err := h.Svc.Exists(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.ExistsResponse{Exists: exists})
}

func ownerOrElevated(c echo.Context, id uint) error {
	p := principal.Current(c)
	if p == nil {
		return apperr.ErrUnauthorized
	}
	if p.UserID != id && !p.HasAnyRole(principal.RoleManager, principal.RoleAdmin) {
		return apperr.ErrForbidden
	}
	return nil
}

// Update allows a user to edit their own profile; managers and admins may
// edit anyone.
func (h *UserHTTP) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := ownerOrElevated(c, id); err != nil {
		return err
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	res, err := h.Svc.List(c.Request().Context(), repo.ListFilter{
		Status: c.QueryParam("status"),
		Query:  c.QueryParam("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
