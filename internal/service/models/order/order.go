package order

import (
	"time"

	"github.com/altamart/orders/internal/service/models/orderitem"
	"github.com/altamart/orders/internal/service/models/status"
)

// Order represents a persisted purchase record aggregating line items.
// TotalAmount and TotalItems are computed once at creation and never
// independently mutated.
type Order struct {
	ID          string                `json:"id"`
	Status      status.Status         `json:"status"`
	TotalAmount float64               `json:"totalAmount"`
	TotalItems  int                   `json:"totalItems"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	OrderItems  []orderitem.OrderItem `json:"orderItems,omitempty"`
}
