package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

// HTTPCatalog talks to the storefront REST API for product details and stock.
type HTTPCatalog struct {
	baseURL  string
	client   *http.Client
	products singleflight.Group
}

const defaultTimeout = 10 * time.Second

func NewHTTPCatalog(baseURL string, timeout time.Duration) *HTTPCatalog {
	// The client timeout is the only bound on shared product lookups.
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCatalog) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	key := strconv.FormatInt(productID, 10)

	// Only concurrent lookups are shared; nothing is kept once the call returns.
	// The shared fetch must outlive any single caller, so it runs detached from
	// ctx and each caller waits on its own ctx instead.
	ch := c.products.DoChan(key, func() (interface{}, error) {
		var p domain.Product
		if err := c.getJSON(context.WithoutCancel(ctx), "/products/"+key, &p); err != nil {
			return domain.Product{}, err
		}
		return p, nil
	})

	select {
	case <-ctx.Done():
		return domain.Product{}, fmt.Errorf("get product %d: %w", productID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Product{}, fmt.Errorf("get product %d: %w", productID, res.Err)
		}
		return res.Val.(domain.Product), nil
	}
}

func (c *HTTPCatalog) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	var s domain.Stock
	if err := c.getJSON(ctx, "/stock/"+strconv.FormatInt(productID, 10), &s); err != nil {
		return domain.Stock{}, fmt.Errorf("get stock %d: %w", productID, err)
	}
	if s.Amount < 0 {
		return domain.Stock{}, fmt.Errorf("get stock %d: negative amount %d", productID, s.Amount)
	}

	s.ProductID = productID
	return s, nil
}

func (c *HTTPCatalog) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products?_limit=1", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("catalog unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPCatalog) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return port.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
