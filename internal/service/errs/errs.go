package errs

import (
	"errors"
	"net/http"

	"github.com/altamart/orders/internal/service/models/status"
)

// Service level errors. Each maps to a distinct HTTP-style code in the
// response envelope so callers can tell bad input from missing data from a
// broken dependency.
var (
	ErrInvalidPayload  = errors.New("invalid request payload")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// Code maps a service error to an HTTP-style status code. Anything not in
// the taxonomy is an internal failure.
func Code(err error) int {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, status.ErrInvalidStatus),
		errors.Is(err, status.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
