package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmeshcher/gestior/internal/model"
)

// ListOrders возвращает страницу заказов, отфильтрованных по статусу и датам.
func (c *Client) ListOrders(ctx context.Context, pageNum, perPage int, f model.OrderFilter) (model.Page[model.Order], error) {
	q := pageQuery(pageNum, perPage)
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	return page[model.Order](ctx, c, request{method: http.MethodGet, path: "/orders", query: q})
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	if err := requireID("order", id); err != nil {
		return nil, err
	}
	return one[model.Order](ctx, c, request{method: http.MethodGet, path: orderPath(id)})
}

// CreateOrder создаёт заказ одним запросом со всеми позициями.
func (c *Client) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	return one[model.Order](ctx, c, request{method: http.MethodPost, path: "/orders", body: req})
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, req model.CreateOrderRequest) (*model.Order, error) {
	if err := requireID("order", id); err != nil {
		return nil, err
	}
	return one[model.Order](ctx, c, request{method: http.MethodPut, path: orderPath(id), body: req})
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	if err := requireID("order", id); err != nil {
		return err
	}
	return call(ctx, c, request{method: http.MethodDelete, path: orderPath(id)})
}

// AddOrderItem добавляет позицию в заказ и возвращает заказ с пересчитанными итогами.
func (c *Client) AddOrderItem(ctx context.Context, orderID int64, item model.CreateOrderItemRequest) (*model.Order, error) {
	if err := requireID("order", orderID); err != nil {
		return nil, err
	}
	return one[model.Order](ctx, c, request{method: http.MethodPost, path: orderPath(orderID) + "/items", body: item})
}

// RemoveOrderItem удаляет позицию из заказа.
func (c *Client) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*model.Order, error) {
	if err := requireID("order", orderID); err != nil {
		return nil, err
	}
	if err := requireID("item", itemID); err != nil {
		return nil, err
	}
	return one[model.Order](ctx, c, request{method: http.MethodDelete, path: fmt.Sprintf("%s/items/%d", orderPath(orderID), itemID)})
}

// FinalizeOrder переводит заказ в статус completed.
func (c *Client) FinalizeOrder(ctx context.Context, id int64, req model.FinalizeOrderRequest) (*model.Order, error) {
	if err := requireID("order", id); err != nil {
		return nil, err
	}
	return one[model.Order](ctx, c, request{method: http.MethodPost, path: orderPath(id) + "/finalize", body: req})
}

// CancelOrder отменяет заказ с необязательной причиной.
func (c *Client) CancelOrder(ctx context.Context, id int64, reason string) (*model.Order, error) {
	if err := requireID("order", id); err != nil {
		return nil, err
	}
	return one[model.Order](ctx, c, request{
		method: http.MethodPost,
		path:   orderPath(id) + "/cancel",
		body:   model.CancelOrderRequest{Reason: reason},
	})
}

func orderPath(id int64) string {
	return fmt.Sprintf("/orders/%d", id)
}
