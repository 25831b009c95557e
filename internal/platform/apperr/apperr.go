// Package apperr defines the error kinds surfaced by the service layer and
// their HTTP mapping. Services wrap these sentinels with context; handlers
// classify with errors.Is, so the kind survives any amount of wrapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrNotFound marks a lookup for an entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied marks an actor attempting an operation their role
	// does not allow.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTransition marks a lifecycle operation applied to an order in
	// the wrong state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation marks a request missing or malforming a required field.
	ErrValidation = errors.New("validation error")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func PermissionDeniedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrPermissionDenied)...)
}

func InvalidTransitionf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidTransition)...)
}

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// ToHTTP converts a service error into an echo HTTPError. Unclassified
// errors become 500s with a generic message so internals do not leak.
func ToHTTP(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
