package port

import (
	"context"
	"errors"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

var ErrNotFound = errors.New("not found")

type CatalogReader interface {
	// GetProduct returns product details, ErrNotFound if the id is unknown
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}

type StockReader interface {
	// GetStock returns the purchasable amount for a product, ErrNotFound if the id is unknown
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}
