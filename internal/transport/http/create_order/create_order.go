package createorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/altamart/orders/internal/service/errs"
	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	Create(ctx context.Context, model order.CreateOrderModel) (*order.Order, error)
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var model order.CreateOrderModel
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		respond.Error(w, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err))
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	for _, item := range model.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			respond.Error(w, fmt.Errorf(
				"%w: each item needs a productId and a positive quantity",
				errs.ErrInvalidPayload,
			))

			return
		}
	}

	created, err := service.Create(r.Context(), model)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, created)
}
