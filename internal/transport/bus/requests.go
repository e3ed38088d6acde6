package bus

import (
	"fmt"

	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/status"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// createOrderRequest is the payload of the create_order command.
type createOrderRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

func (r *createOrderRequest) toModel() (order.CreateOrderModel, error) {
	model := order.CreateOrderModel{
		Items: make([]order.CreateOrderItemModel, 0, len(r.Items)),
	}

	for _, item := range r.Items {
		if item.ProductID == "" {
			return order.CreateOrderModel{}, fmt.Errorf("productId must not be empty")
		}
		if item.Quantity <= 0 {
			return order.CreateOrderModel{}, fmt.Errorf(
				"quantity must be positive, got %d for product %s",
				item.Quantity,
				item.ProductID,
			)
		}

		model.Items = append(model.Items, order.CreateOrderItemModel{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return model, nil
}

// findAllRequest is the payload of the find_all_orders command.
type findAllRequest struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

func (r *findAllRequest) toModel() (order.PageRequest, error) {
	req := order.PageRequest{
		Page:  r.Page,
		Limit: r.Limit,
	}

	if req.Page < 1 {
		req.Page = defaultPage
	}
	if req.Limit < 1 {
		req.Limit = defaultLimit
	}

	if r.Status != "" {
		st, err := status.ParseStatus(r.Status)
		if err != nil {
			return order.PageRequest{}, fmt.Errorf("%w: %s", err, r.Status)
		}
		req.Status = &st
	}

	return req, nil
}

// findOneRequest is the payload of the find_one_order command.
type findOneRequest struct {
	ID string `json:"id"`
}

// changeStatusRequest is the payload of the change_order_status command.
type changeStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
