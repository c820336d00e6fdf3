// Package httpx holds the error taxonomy shared by every handler package and
// its mapping onto HTTP status codes.
package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidState  = errors.New("invalid state for this operation")
	ErrDuplicateBid  = errors.New("you have already bid on this job")
)

// Status maps a domain error to an HTTP status code. Unknown errors are
// treated as internal failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrDuplicateBid):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes the JSON error response for err. Internal failures are logged
// with detail and returned to the caller as an opaque message; everything else
// carries its precise, caller-actionable message.
func Fail(c echo.Context, err error) error {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("[http] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
