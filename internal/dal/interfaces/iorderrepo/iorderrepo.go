package iorderrepo

import (
	"context"

	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/status"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Count(ctx context.Context, st *status.Status) (int64, error)
	UpdateStatus(ctx context.Context, id string, st status.Status) (order.Order, error)
}
