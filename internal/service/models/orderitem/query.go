package orderitem

// QueryOrderItemsModel represents filter parameters for querying order items.
type QueryOrderItemsModel struct {
	Ids      []int64  `json:"ids,omitempty"`
	OrderIds []string `json:"orderIds,omitempty"`
}
