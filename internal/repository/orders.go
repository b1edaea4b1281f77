package repository

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
)

// OrderAPI описывает операции с заказами на сервере.
type OrderAPI interface {
	ListOrders(ctx context.Context, page, perPage int, f model.OrderFilter) (model.Page[model.Order], error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)
	UpdateOrder(ctx context.Context, id int64, req model.CreateOrderRequest) (*model.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	AddOrderItem(ctx context.Context, orderID int64, item model.CreateOrderItemRequest) (*model.Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*model.Order, error)
	FinalizeOrder(ctx context.Context, id int64, req model.FinalizeOrderRequest) (*model.Order, error)
	CancelOrder(ctx context.Context, id int64, reason string) (*model.Order, error)
}

// SubmitStrategy задаёт способ отправки черновика на сервер.
type SubmitStrategy int

const (
	// SubmitBulk создаёт заказ одним запросом со всеми позициями.
	SubmitBulk SubmitStrategy = iota
	// SubmitPerItem создаёт заголовок заказа, затем добавляет позиции по одной.
	SubmitPerItem
)

// Submission содержит черновик, подготовленный к отправке.
type Submission struct {
	Request  model.CreateOrderRequest
	Strategy SubmitStrategy
	// Names хранит названия товаров по id для сообщений о позициях, которые не удалось добавить.
	Names map[int64]string
}

// NewSubmission формирует отправку из черновика. Пустой черновик возвращает draft.ErrEmptyOrder.
func NewSubmission(d *draft.Order, finalize bool, strategy SubmitStrategy) (Submission, error) {
	req, err := d.ToCreateRequest(finalize)
	if err != nil {
		return Submission{}, err
	}

	names := make(map[int64]string, d.Len())
	for _, it := range d.Items() {
		names[it.Product.ID] = it.Product.Name
	}
	return Submission{Request: req, Strategy: strategy, Names: names}, nil
}

// SubmitError описывает заказ, созданный на сервере не полностью.
type SubmitError struct {
	Order      model.Order
	Unattached []string
	Err        error
}

func (e *SubmitError) Error() string {
	if len(e.Unattached) > 0 {
		return fmt.Sprintf("order %s was created, but these products could not be added: %s",
			e.Order.OrderNumber, strings.Join(e.Unattached, ", "))
	}
	return fmt.Sprintf("order %s was saved as draft, but could not be finalized", e.Order.OrderNumber)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// OrderRepository работает с заказами.
type OrderRepository struct {
	api    OrderAPI
	logger *zap.Logger
}

// NewOrderRepository создаёт репозиторий заказов.
func NewOrderRepository(a OrderAPI, logger *zap.Logger) *OrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderRepository{api: a, logger: logger}
}

func (r *OrderRepository) List(ctx context.Context, page, perPage int, f model.OrderFilter) resource.Stream[model.Page[model.Order]] {
	return resource.Run(ctx, messageFor("could not load orders"), func(ctx context.Context) (model.Page[model.Order], error) {
		return r.api.ListOrders(ctx, page, perPage, f)
	})
}

func (r *OrderRepository) Get(ctx context.Context, id int64) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not load order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.GetOrder(ctx, id)
	}))
}

func (r *OrderRepository) Create(ctx context.Context, req model.CreateOrderRequest) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not create order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.CreateOrder(ctx, req)
	}))
}

func (r *OrderRepository) Update(ctx context.Context, id int64, req model.CreateOrderRequest) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not update order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.UpdateOrder(ctx, id, req)
	}))
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) resource.Stream[Done] {
	return resource.Run(ctx, messageFor("could not delete order"), func(ctx context.Context) (Done, error) {
		return Done{}, r.api.DeleteOrder(ctx, id)
	})
}

func (r *OrderRepository) AddItem(ctx context.Context, orderID int64, item model.CreateOrderItemRequest) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not add product to order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.AddOrderItem(ctx, orderID, item)
	}))
}

func (r *OrderRepository) RemoveItem(ctx context.Context, orderID, itemID int64) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not remove product from order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.RemoveOrderItem(ctx, orderID, itemID)
	}))
}

// Finalize завершает заказ и отмечает его оплаченным.
func (r *OrderRepository) Finalize(ctx context.Context, id int64, paymentMethodID *int64) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not finalize order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.FinalizeOrder(ctx, id, model.FinalizeOrderRequest{
			PaymentStatus:   model.PaymentStatusPaid,
			PaymentMethodID: paymentMethodID,
		})
	}))
}

func (r *OrderRepository) Cancel(ctx context.Context, id int64, reason string) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not cancel order"), deref(func(ctx context.Context) (*model.Order, error) {
		return r.api.CancelOrder(ctx, id, strings.TrimSpace(reason))
	}))
}

// Submit отправляет черновик выбранной стратегией.
// При SubmitPerItem неудача любой позиции даёт Error с созданным заказом в данных.
func (r *OrderRepository) Submit(ctx context.Context, s Submission) resource.Stream[model.Order] {
	return resource.Run(ctx, messageFor("could not create order"), func(ctx context.Context) (model.Order, error) {
		if len(s.Request.Items) == 0 {
			return model.Order{}, draft.ErrEmptyOrder
		}
		if s.Strategy == SubmitPerItem {
			return r.submitPerItem(ctx, s)
		}

		order, err := r.api.CreateOrder(ctx, s.Request)
		if err != nil {
			return model.Order{}, err
		}
		return *order, nil
	})
}

func (r *OrderRepository) submitPerItem(ctx context.Context, s Submission) (model.Order, error) {
	header := s.Request
	header.Items = nil
	header.Status = model.OrderStatusDraft

	created, err := r.api.CreateOrder(ctx, header)
	if err != nil {
		return model.Order{}, err
	}
	current := *created

	var (
		unattached []string
		lastErr    error
	)
	for _, item := range s.Request.Items {
		if ctx.Err() != nil {
			return current, ctx.Err()
		}

		updated, err := r.api.AddOrderItem(ctx, current.ID, item)
		if err != nil {
			r.logger.Warn("add order item failed",
				zap.Int64("order_id", current.ID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			unattached = append(unattached, productName(s.Names, item.ProductID))
			lastErr = err
			continue
		}
		current = *updated
	}

	if len(unattached) > 0 {
		return current, &resource.Partial[model.Order]{
			Value: current,
			Err:   &SubmitError{Order: current, Unattached: unattached, Err: lastErr},
		}
	}

	if s.Request.Status != model.OrderStatusCompleted {
		return current, nil
	}

	finalized, err := r.api.FinalizeOrder(ctx, current.ID, model.FinalizeOrderRequest{PaymentStatus: model.PaymentStatusPaid})
	if err != nil {
		return current, &resource.Partial[model.Order]{
			Value: current,
			Err:   &SubmitError{Order: current, Err: err},
		}
	}
	return *finalized, nil
}

func productName(names map[int64]string, id int64) string {
	if name := names[id]; name != "" {
		return name
	}
	return fmt.Sprintf("product #%d", id)
}
