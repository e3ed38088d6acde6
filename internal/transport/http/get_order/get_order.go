package getorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	FindOne(ctx context.Context, id string) (*order.Order, error)
}

// GetOrder handles the get order by id request.
func GetOrder(w http.ResponseWriter, r *http.Request, id string, service service) {
	found, err := service.FindOne(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, found)
}
