package apperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPErrorHandler renders apperr values as {"code","message"} JSON. Anything
// unrecognized becomes a generic 500 with the detail kept in the log only.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status = http.StatusInternalServerError
			body   = errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
		)

		var ae *Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status = ae.Status
			body = errorBody{Code: ae.Code, Message: ae.Message}
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				body = errorBody{Code: http.StatusText(status), Message: msg}
			} else {
				body = errorBody{Code: http.StatusText(status), Message: http.StatusText(status)}
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed", "status", status, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
