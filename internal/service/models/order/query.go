package order

import "github.com/altamart/orders/internal/service/models/status"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids    []string       `json:"ids,omitempty"`
	Status *status.Status `json:"status,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	Offset int            `json:"offset,omitempty"`
}

// CreateOrderItemModel is one requested line of a create order command.
type CreateOrderItemModel struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderModel is the payload of a create order command.
type CreateOrderModel struct {
	Items []CreateOrderItemModel `json:"items"`
}

// PageRequest represents pagination parameters for listing orders.
type PageRequest struct {
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Status *status.Status `json:"status,omitempty"`
}
