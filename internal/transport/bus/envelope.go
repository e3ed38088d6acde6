package bus

import (
	"errors"
	"net/http"

	"github.com/altamart/orders/internal/service/errs"
	"github.com/altamart/orders/internal/service/models/status"
)

// Envelope is the error shape returned to callers on failure.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// FromError maps a service error to the response envelope. Input and
// not-found classes keep their distinct codes; anything outside the
// taxonomy is reported as an internal failure without leaking details.
func FromError(err error) Envelope {
	code := errs.Code(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal error"
	}

	return Envelope{
		Status:  code,
		Message: message,
	}
}

// isClientError reports whether the error belongs to the request rather
// than the service.
func isClientError(err error) bool {
	return errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrEmptyOrder) ||
		errors.Is(err, errs.ErrProductNotFound) ||
		errors.Is(err, errs.ErrOrderNotFound) ||
		errors.Is(err, status.ErrInvalidStatus) ||
		errors.Is(err, status.ErrInvalidTransition)
}
