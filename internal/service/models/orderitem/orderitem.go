package orderitem

// OrderItem represents one line within an order. Price is the unit price
// captured at order creation time, decoupled from the product's current
// catalog price. Name is joined in from the product service on read and is
// never persisted.
type OrderItem struct {
	ID        int64   `json:"-"`
	OrderID   string  `json:"-"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name,omitempty"`
}
