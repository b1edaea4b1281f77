package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmeshcher/gestior/internal/model"
)

func (c *Client) ListClients(ctx context.Context, pageNum, perPage int, f model.ClientFilter) (model.Page[model.Client], error) {
	q := pageQuery(pageNum, perPage)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return page[model.Client](ctx, c, request{method: http.MethodGet, path: "/clients", query: q})
}

func (c *Client) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	if err := requireID("client", id); err != nil {
		return nil, err
	}
	return one[model.Client](ctx, c, request{method: http.MethodGet, path: fmt.Sprintf("/clients/%d", id)})
}

func (c *Client) CreateClient(ctx context.Context, req model.CreateClientRequest) (*model.Client, error) {
	return one[model.Client](ctx, c, request{method: http.MethodPost, path: "/clients", body: req})
}

func (c *Client) UpdateClient(ctx context.Context, id int64, req model.CreateClientRequest) (*model.Client, error) {
	if err := requireID("client", id); err != nil {
		return nil, err
	}
	return one[model.Client](ctx, c, request{method: http.MethodPut, path: fmt.Sprintf("/clients/%d", id), body: req})
}

func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	if err := requireID("client", id); err != nil {
		return err
	}
	return call(ctx, c, request{method: http.MethodDelete, path: fmt.Sprintf("/clients/%d", id)})
}

// ListPaymentMethods возвращает способы оплаты, настроенные на сервере.
func (c *Client) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	methods, err := one[[]model.PaymentMethod](ctx, c, request{method: http.MethodGet, path: "/payment-methods"})
	if err != nil {
		return nil, err
	}
	return *methods, nil
}
