// Package apperr holds the error kinds shared by services and their HTTP
// mapping.
package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

// Error carries a user-facing message and the kind it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: ErrNotFound, Msg: msg} }
func Forbidden(msg string) error  { return &Error{Kind: ErrForbidden, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: ErrConflict, Msg: msg} }

func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Respond writes {"error": msg} with the status matching err.
func Respond(c echo.Context, err error) error {
	return c.JSON(Status(err), echo.Map{"error": err.Error()})
}
