package listorders

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/status"
	"github.com/altamart/orders/internal/service/services/ordersvc"
	"github.com/altamart/orders/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	FindAll(ctx context.Context, req order.PageRequest) (*ordersvc.Page, error)
}

// ListOrders handles the list orders request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := r.URL.Query()

	req := order.PageRequest{
		Page:  1,
		Limit: 10,
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			req.Page = page
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			req.Limit = limit
		}
	}

	if statusStr := query.Get("status"); statusStr != "" {
		st, err := status.ParseStatus(statusStr)
		if err != nil {
			respond.Error(w, fmt.Errorf("%w: %s", err, statusStr))

			return
		}
		req.Status = &st
	}

	page, err := service.FindAll(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting orders", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, page)
}
