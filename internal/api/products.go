package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mmeshcher/gestior/internal/model"
)

// ListProducts возвращает страницу каталога.
func (c *Client) ListProducts(ctx context.Context, pageNum, perPage int, f model.ProductFilter) (model.Page[model.Product], error) {
	q := pageQuery(pageNum, perPage)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	return page[model.Product](ctx, c, request{method: http.MethodGet, path: "/products", query: q})
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	return one[model.Product](ctx, c, request{method: http.MethodGet, path: fmt.Sprintf("/products/%d", id)})
}

func (c *Client) CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	return one[model.Product](ctx, c, request{method: http.MethodPost, path: "/products", body: req})
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req model.CreateProductRequest) (*model.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	return one[model.Product](ctx, c, request{method: http.MethodPut, path: fmt.Sprintf("/products/%d", id), body: req})
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := requireID("product", id); err != nil {
		return err
	}
	return call(ctx, c, request{method: http.MethodDelete, path: fmt.Sprintf("/products/%d", id)})
}

// UpdateStock задаёт новый остаток товара.
func (c *Client) UpdateStock(ctx context.Context, id int64, req model.StockUpdateRequest) (*model.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	return one[model.Product](ctx, c, request{method: http.MethodPatch, path: fmt.Sprintf("/products/%d/stock", id), body: req})
}
