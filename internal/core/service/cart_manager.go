package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

// Result is the outcome of a successful cart operation.
type Result struct {
	Cart    domain.Cart
	Message string
	// Ignored is set when the request was dropped without touching the cart.
	Ignored bool
}

// CartManager owns one cart and is the only writer of its stored copy.
// It is not safe for concurrent use.
type CartManager struct {
	key     string
	store   port.CartStore
	catalog port.CatalogReader
	stock   port.StockReader
	logger  *zap.Logger
	cart    domain.Cart
}

// NewCartManager loads the cart stored under key. A missing or malformed value
// yields an empty cart; only a store failure is returned as an error.
func NewCartManager(ctx context.Context, key string, store port.CartStore, catalog port.CatalogReader, stock port.StockReader, logger *zap.Logger) (*CartManager, error) {
	m := &CartManager{
		key:     key,
		store:   store,
		catalog: catalog,
		stock:   stock,
		logger:  logger,
		cart:    domain.Cart{},
	}

	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	if !found {
		return m, nil
	}

	cart, err := decodeCart(raw)
	if err != nil {
		logger.Warn("discarding malformed stored cart", zap.String("key", key), zap.Error(err))
		return m, nil
	}
	m.cart = cart

	return m, nil
}

func (m *CartManager) Snapshot() domain.Cart {
	return m.cart.Clone()
}

func (m *CartManager) AddItem(ctx context.Context, productID int64) (Result, error) {
	const op = "add item"

	idx, found := m.cart.Find(productID)
	currentAmount := 0
	if found {
		currentAmount = m.cart[idx].Amount
	}

	stock, err := m.stock.GetStock(ctx, productID)
	if err != nil {
		return Result{}, opError(op, productID, ErrAddFailed, fmt.Errorf("get stock: %w", err))
	}

	amount := currentAmount + 1
	if amount > stock.Amount {
		return Result{}, opError(op, productID, ErrStockExceeded, nil)
	}

	next := m.cart.Clone()
	if found {
		next[idx].Amount = amount
	} else {
		product, err := m.catalog.GetProduct(ctx, productID)
		if err != nil {
			return Result{}, opError(op, productID, ErrAddFailed, fmt.Errorf("get product: %w", err))
		}

		item := domain.NewCartItem(product, 1)
		item.ID = productID
		next = append(next, item)
	}

	if err := m.commit(ctx, next); err != nil {
		return Result{}, opError(op, productID, ErrAddFailed, err)
	}

	return m.result(fmt.Sprintf("Added id %d to cart", productID)), nil
}

func (m *CartManager) RemoveItem(ctx context.Context, productID int64) (Result, error) {
	const op = "remove item"

	idx, found := m.cart.Find(productID)
	if !found {
		return Result{}, opError(op, productID, ErrRemoveFailed, port.ErrNotFound)
	}

	next := make(domain.Cart, 0, len(m.cart)-1)
	next = append(next, m.cart[:idx]...)
	next = append(next, m.cart[idx+1:]...)

	if err := m.commit(ctx, next); err != nil {
		return Result{}, opError(op, productID, ErrRemoveFailed, err)
	}

	return m.result(fmt.Sprintf("Removed id %d from cart", productID)), nil
}

// SetAmount ignores non-positive amounts; removal goes through RemoveItem only.
func (m *CartManager) SetAmount(ctx context.Context, productID int64, amount int) (Result, error) {
	const op = "set amount"

	if amount <= 0 {
		return Result{Cart: m.Snapshot(), Ignored: true}, nil
	}

	stock, err := m.stock.GetStock(ctx, productID)
	if err != nil {
		return Result{}, opError(op, productID, ErrUpdateFailed, fmt.Errorf("get stock: %w", err))
	}
	if amount > stock.Amount {
		return Result{}, opError(op, productID, ErrStockExceeded, nil)
	}

	idx, found := m.cart.Find(productID)
	if !found {
		return Result{}, opError(op, productID, ErrProductNotFound, nil)
	}

	next := m.cart.Clone()
	next[idx].Amount = amount

	if err := m.commit(ctx, next); err != nil {
		return Result{}, opError(op, productID, ErrUpdateFailed, err)
	}

	return m.result(fmt.Sprintf("Updated id %d to amount %d", productID, amount)), nil
}

// commit persists next and only then makes it the current cart.
func (m *CartManager) commit(ctx context.Context, next domain.Cart) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := m.store.Set(ctx, m.key, string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	m.cart = next
	return nil
}

func (m *CartManager) result(message string) Result {
	return Result{Cart: m.Snapshot(), Message: message}
}

func decodeCart(raw string) (domain.Cart, error) {
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}

	cart := make(domain.Cart, 0, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			continue
		}
		if _, dup := cart.Find(item.ID); dup {
			continue
		}
		cart = append(cart, item)
	}

	return cart, nil
}
