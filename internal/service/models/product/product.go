package product

// Product is a point-in-time snapshot of a catalog product as returned by
// the product service's validate_products call.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// IndexByID builds a lookup map over a validator response.
func IndexByID(products []Product) map[string]Product {
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return byID
}
