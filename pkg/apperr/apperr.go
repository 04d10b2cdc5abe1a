// Package apperr is the shared error taxonomy. Every domain error carries a
// stable machine-readable code and a message safe to return to clients;
// internal causes are wrapped and only ever logged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    string
	Message string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes sentinel comparison work across wrapped copies: two apperr values
// match when their codes match.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy carrying an internal cause for logs. The cause is
// never rendered to clients.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, cause: err}
}

func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Status: e.Status, cause: e.cause}
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized)
	ErrUnauthorized       = New("UNAUTHORIZED", "authentication required", http.StatusUnauthorized)
	ErrInvalidToken       = New("INVALID_TOKEN", "invalid refresh token", http.StatusUnauthorized)
	ErrTokenExpired       = New("TOKEN_EXPIRED", "refresh token expired or revoked", http.StatusUnauthorized)
	ErrForbidden          = New("FORBIDDEN", "insufficient permissions", http.StatusForbidden)
	ErrDuplicateResource  = New("DUPLICATE_RESOURCE", "resource already exists", http.StatusConflict)
	ErrNotFound           = New("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrValidation         = New("VALIDATION_ERROR", "invalid request", http.StatusBadRequest)

	ErrInvalidStatusTransition = New("INVALID_STATUS_TRANSITION", "invalid order status transition", http.StatusBadRequest)
	ErrOrderNotCancellable     = New("ORDER_NOT_CANCELLABLE", "order can no longer be cancelled", http.StatusBadRequest)
	ErrOrderNotUpdatable       = New("ORDER_NOT_UPDATABLE", "order can no longer be updated", http.StatusBadRequest)

	ErrServiceUnavailable = New("SERVICE_UNAVAILABLE", "dependent service unavailable", http.StatusServiceUnavailable)
)
