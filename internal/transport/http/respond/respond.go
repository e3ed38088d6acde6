package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/altamart/orders/internal/service/errs"
)

// envelope is the error shape returned to HTTP callers, mirroring the bus
// transport's envelope.
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

// Error writes the error envelope for a service error.
func Error(w http.ResponseWriter, err error) {
	code := errs.Code(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal error"
	}

	JSON(w, code, envelope{
		Status:  code,
		Message: message,
	})
}
