package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log/slog"
)

func TestError_IsAcrossWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("refresh: %w", ErrTokenExpired.WithCause(errors.New("row revoked")))
	assert.ErrorIs(t, wrapped, ErrTokenExpired)
	assert.NotErrorIs(t, wrapped, ErrInvalidToken)
}

func TestError_CauseNotInClientMessage(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(slog.Default())
	e.GET("/boom", func(c echo.Context) error {
		return ErrInvalidStatusTransition.WithCause(errors.New("pq: deadlock detected"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_STATUS_TRANSITION")
	assert.NotContains(t, rec.Body.String(), "deadlock")
}

func TestHTTPErrorHandler_UnknownErrorIs500(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(slog.Default())
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("driver: bad connection")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), "bad connection")
}
