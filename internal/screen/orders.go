package screen

import (
	"context"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
)

// OrdersScreen показывает список заказов с фильтром по статусу.
type OrdersScreen struct {
	*ListScreen[model.Order, model.OrderFilter]

	scope  *Scope
	orders OrderSource
}

// NewOrdersScreen создаёт экран списка заказов.
func NewOrdersScreen(scope *Scope, orders OrderSource, perPage int) *OrdersScreen {
	return &OrdersScreen{
		ListScreen: NewListScreen(scope, Lister[model.Order, model.OrderFilter](orders.List), perPage, model.OrderFilter{}),
		scope:      scope,
		orders:     orders,
	}
}

// SetStatus фильтрует список по статусу. Пустой статус снимает фильтр.
func (s *OrdersScreen) SetStatus(status model.OrderStatus) bool {
	f := s.Filter()
	f.Status = status
	return s.SetFilter(f)
}

// Delete удаляет заказ и при успехе убирает его из списка.
func (s *OrdersScreen) Delete(id int64) bool {
	return consume(s.scope, func(ctx context.Context) resource.Stream[repository.Done] {
		return s.orders.Delete(ctx, id)
	}, func(r resource.Resource[repository.Done]) {
		switch r := r.(type) {
		case resource.Success[repository.Done]:
			s.Remove(func(o model.Order) bool { return o.ID == id })
		case resource.Error[repository.Done]:
			s.setError(r.Message)
		}
	})
}

// NewProductsScreen создаёт экран каталога товаров.
func NewProductsScreen(scope *Scope, products ProductSource, perPage int, f model.ProductFilter) *ListScreen[model.Product, model.ProductFilter] {
	return NewListScreen(scope, Lister[model.Product, model.ProductFilter](products.List), perPage, f)
}

// NewClientsScreen создаёт экран справочника клиентов.
func NewClientsScreen(scope *Scope, clients ClientSource, perPage int, f model.ClientFilter) *ListScreen[model.Client, model.ClientFilter] {
	return NewListScreen(scope, Lister[model.Client, model.ClientFilter](clients.List), perPage, f)
}
