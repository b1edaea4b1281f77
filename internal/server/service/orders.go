package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/server/storage"
)

func (s *Service) ListOrders(ctx context.Context, userID int64, p storage.ListParams, f model.OrderFilter) (model.Page[model.Order], error) {
	items, total, err := s.store.ListOrders(ctx, userID, p, f)
	if err != nil {
		return model.Page[model.Order]{}, err
	}
	return NewPage(items, total, p), nil
}

func (s *Service) GetOrder(ctx context.Context, userID, id int64) (*model.Order, error) {
	return s.store.GetOrder(ctx, userID, id)
}

// CreateOrder создаёт заказ. Заказ со статусом completed сразу завершается и списывает остатки.
func (s *Service) CreateOrder(ctx context.Context, userID int64, req model.CreateOrderRequest) (*model.Order, error) {
	o := model.Order{
		Status:        model.OrderStatusDraft,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentCash,
		CreatedAt:     s.now().UTC().Format(storage.TimeFormat),
	}
	return s.writeOrder(ctx, userID, o, req)
}

// UpdateOrder заменяет шапку и позиции черновика.
func (s *Service) UpdateOrder(ctx context.Context, userID, id int64, req model.CreateOrderRequest) (*model.Order, error) {
	o, err := s.draftOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.writeOrder(ctx, userID, *o, req)
}

func (s *Service) writeOrder(ctx context.Context, userID int64, o model.Order, req model.CreateOrderRequest) (*model.Order, error) {
	status := req.Status
	if status == "" {
		status = model.OrderStatusDraft
	}
	if status != model.OrderStatusDraft && status != model.OrderStatusCompleted {
		return nil, invalid("status", "the selected status is invalid")
	}
	if status == model.OrderStatusCompleted && len(req.Items) == 0 {
		return nil, invalid("items", "the order must contain at least one item")
	}

	if req.PaymentMethod != "" {
		kind, ok := model.ParsePaymentMethodKind(string(req.PaymentMethod))
		if !ok {
			return nil, invalid("payment_method", "the selected payment method is invalid")
		}
		o.PaymentMethod = kind
	}
	if req.Discount != nil {
		if *req.Discount < 0 {
			return nil, invalid("discount", "the discount must be at least 0")
		}
		o.Discount = round2(*req.Discount)
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}

	if err := s.applyClient(ctx, userID, &o, req); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for i, ir := range req.Items {
		it, err := s.buildItem(ctx, userID, fmt.Sprintf("items.%d", i), ir)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	o.Items = items
	recompute(&o)

	if status == model.OrderStatusCompleted {
		return s.complete(ctx, userID, o, model.PaymentStatusPaid)
	}

	saved, err := s.store.SaveOrder(ctx, userID, o)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) applyClient(ctx context.Context, userID int64, o *model.Order, req model.CreateOrderRequest) error {
	o.ClientID = nil
	o.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientID == nil {
		return nil
	}

	c, err := s.store.GetClient(ctx, userID, *req.ClientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invalid("client_id", "the selected client is invalid")
		}
		return err
	}
	id := c.ID
	o.ClientID = &id
	o.ClientName = c.Name
	return nil
}

// buildItem проверяет позицию и подставляет цену товара, если она не задана.
func (s *Service) buildItem(ctx context.Context, userID int64, field string, req model.CreateOrderItemRequest) (model.OrderItem, error) {
	if req.Quantity <= 0 {
		return model.OrderItem{}, invalid(field+".quantity", "the quantity must be greater than 0")
	}
	if req.Price != nil && *req.Price < 0 {
		return model.OrderItem{}, invalid(field+".price", "the price must be at least 0")
	}

	p, err := s.store.GetProduct(ctx, userID, req.ProductID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.OrderItem{}, invalid(field+".product_id", "the selected product is invalid")
		}
		return model.OrderItem{}, err
	}
	if !p.IsActive {
		return model.OrderItem{}, invalid(field+".product_id", fmt.Sprintf("the product %s is not active", p.Name))
	}

	price := p.Price
	if req.Price != nil {
		price = *req.Price
	}
	return model.OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  req.Quantity,
		Price:     round2(price),
	}, nil
}

// recompute пересчитывает суммы позиций и итог заказа. Итог не бывает отрицательным.
func recompute(o *model.Order) {
	var subtotal float64
	for i := range o.Items {
		o.Items[i].Subtotal = round2(o.Items[i].Quantity * o.Items[i].Price)
		subtotal += o.Items[i].Subtotal
	}
	o.Subtotal = round2(subtotal)
	o.Total = round2(max(0, o.Subtotal-o.Discount+o.TaxAmount))
}

func (s *Service) DeleteOrder(ctx context.Context, userID, id int64) error {
	if _, err := s.draftOrder(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeleteOrder(ctx, userID, id)
}

// AddItem добавляет позицию в черновик.
func (s *Service) AddItem(ctx context.Context, userID, orderID int64, req model.CreateOrderItemRequest) (*model.Order, error) {
	o, err := s.draftOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	it, err := s.buildItem(ctx, userID, "item", req)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, it)
	recompute(o)

	saved, err := s.store.SaveOrder(ctx, userID, *o)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// RemoveItem удаляет позицию из черновика.
func (s *Service) RemoveItem(ctx context.Context, userID, orderID, itemID int64) (*model.Order, error) {
	o, err := s.draftOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, it := range o.Items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, storage.ErrNotFound
	}
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	recompute(o)

	saved, err := s.store.SaveOrder(ctx, userID, *o)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Finalize завершает черновик: статус completed, отметка продажи и списание остатков.
func (s *Service) Finalize(ctx context.Context, userID, id int64, req model.FinalizeOrderRequest) (*model.Order, error) {
	o, err := s.draftOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(o.Items) == 0 {
		return nil, invalid("items", "the order must contain at least one item")
	}

	if req.PaymentMethodID != nil {
		kind, err := s.paymentKind(ctx, *req.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		o.PaymentMethod = kind
	}

	status := req.PaymentStatus
	if status == "" {
		status = model.PaymentStatusPaid
	}
	return s.complete(ctx, userID, *o, status)
}

func (s *Service) paymentKind(ctx context.Context, methodID int64) (model.PaymentMethodKind, error) {
	methods, err := s.store.ListPaymentMethods(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range methods {
		if m.ID != methodID {
			continue
		}
		if !m.IsActive {
			break
		}
		if kind, ok := model.ParsePaymentMethodKind(m.Description); ok {
			return kind, nil
		}
		return model.PaymentMultiple, nil
	}
	return "", invalid("payment_method_id", "the selected payment method is invalid")
}

func (s *Service) complete(ctx context.Context, userID int64, o model.Order, payment model.PaymentStatus) (*model.Order, error) {
	o.Status = model.OrderStatusCompleted
	o.PaymentStatus = payment
	o.SoldAt = s.now().UTC().Format(storage.TimeFormat)

	saved, err := s.store.SaveOrder(ctx, userID, o)
	if err != nil {
		return nil, err
	}
	s.moveStock(ctx, userID, saved, -1)
	return &saved, nil
}

// Cancel отменяет заказ. Для завершённого заказа остатки возвращаются на склад.
func (s *Service) Cancel(ctx context.Context, userID, id int64, reason string) (*model.Order, error) {
	o, err := s.store.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if o.IsCanceled() {
		return nil, fmt.Errorf("%w: order %s is already canceled", ErrInvalidState, o.OrderNumber)
	}

	wasCompleted := o.IsCompleted()
	o.Status = model.OrderStatusCanceled
	o.CancelReason = strings.TrimSpace(reason)
	if wasCompleted && o.PaymentStatus == model.PaymentStatusPaid {
		o.PaymentStatus = model.PaymentStatusRefunded
	}

	saved, err := s.store.SaveOrder(ctx, userID, *o)
	if err != nil {
		return nil, err
	}
	if wasCompleted {
		s.moveStock(ctx, userID, saved, 1)
	}
	return &saved, nil
}

// moveStock изменяет остатки по позициям заказа. Товары, удалённые из каталога, пропускаются.
func (s *Service) moveStock(ctx context.Context, userID int64, o model.Order, sign float64) {
	for _, it := range o.Items {
		err := s.store.AdjustStock(ctx, userID, it.ProductID, sign*it.Quantity)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("adjust stock",
				zap.Int64("order_id", o.ID),
				zap.Int64("product_id", it.ProductID),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) draftOrder(ctx context.Context, userID, id int64) (*model.Order, error) {
	o, err := s.store.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !o.IsDraft() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, o.OrderNumber, o.Status)
	}
	return o, nil
}
