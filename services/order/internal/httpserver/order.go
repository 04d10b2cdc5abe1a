package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"orderhub/pkg/apperr"
	"orderhub/pkg/principal"
	"orderhub/services/order/internal/repo"
	"orderhub/services/order/internal/service"
	"orderhub/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.ErrValidation.WithMessage("invalid id")
	}
	return uint(id), nil
}

func (h *OrderHTTP) Create(c echo.Context) error {
	p := principal.Current(c)
	if p == nil {
		return apperr.ErrUnauthorized
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Create(c.Request().Context(), p.UserID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	res, err := h.Svc.Get(c.Request().Context(), id, principal.Current(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) GetByNumber(c echo.Context) error {
	res, err := h.Svc.GetByNumber(c.Request().Context(), c.Param("orderNumber"), principal.Current(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ListMine returns the caller's own orders.
func (h *OrderHTTP) ListMine(c echo.Context) error {
	p := principal.Current(c)
	if p == nil {
		return apperr.ErrUnauthorized
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	res, err := h.Svc.List(c.Request().Context(), repo.ListFilter{
		UserID: p.UserID,
		Status: c.QueryParam("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// List is the privileged listing across all users.
func (h *OrderHTTP) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	var userID uint
	if raw := c.QueryParam("userId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperr.ErrValidation.WithMessage("invalid userId")
		}
		userID = uint(parsed)
	}

	res, err := h.Svc.List(c.Request().Context(), repo.ListFilter{
		UserID: userID,
		Status: c.QueryParam("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	res, err := h.Svc.Cancel(c.Request().Context(), id, principal.Current(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrValidation.WithCause(err)
	}

	res, err := h.Svc.Update(c.Request().Context(), id, req, principal.Current(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) Statistics(c echo.Context) error {
	res, err := h.Svc.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) Search(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	docs, err := h.Svc.SearchOrders(c.Request().Context(), transport.SearchRequest{
		Query:  c.QueryParam("q"),
		Status: c.QueryParam("status"),
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}
