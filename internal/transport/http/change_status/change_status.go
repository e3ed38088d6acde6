package changestatus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/altamart/orders/internal/service/errs"
	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/status"
	"github.com/altamart/orders/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	ChangeStatus(ctx context.Context, id string, newStatus status.Status) (*order.Order, error)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus handles the change order status request.
func ChangeStatus(w http.ResponseWriter, r *http.Request, id string, service service) {
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err))
		slog.Error("Error decoding request body for change status", "error", err)

		return
	}

	st, err := status.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, fmt.Errorf("%w: %s", err, req.Status))

		return
	}

	updated, err := service.ChangeStatus(r.Context(), id, st)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error changing order status", "order_id", id, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, updated)
}
