package iproducts

import (
	"context"

	"github.com/altamart/orders/internal/service/models/product"
)

// Client is an interface for the remote product validator. A caching
// decorator can wrap it without touching the order service.
type Client interface {
	ValidateProducts(ctx context.Context, ids []string) ([]product.Product, error)
}
