package screen

import (
	"context"
	"sync"

	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
)

// CreateOrderState описывает состояние экрана оформления заказа.
type CreateOrderState struct {
	Draft      draft.Snapshot
	Submitting bool
	Error      string
	// Created хранит заказ, созданный последней успешной отправкой.
	Created *model.Order
	// Partial хранит заказ, созданный на сервере не полностью.
	Partial *model.Order

	Products        []model.Product
	ProductsLoading bool
}

// CreateOrderScreen владеет черновиком заказа и отправляет его на сервер.
type CreateOrderScreen struct {
	scope    *Scope
	store    *Store[CreateOrderState]
	orders   OrderSource
	products ProductSource
	strategy repository.SubmitStrategy

	mu         sync.Mutex
	draft      *draft.Order
	submitting bool
}

// NewCreateOrderScreen создаёт экран с пустым черновиком. products может быть nil, тогда поиск товаров недоступен.
func NewCreateOrderScreen(scope *Scope, orders OrderSource, products ProductSource, strategy repository.SubmitStrategy) *CreateOrderScreen {
	d := draft.New()
	return &CreateOrderScreen{
		scope:    scope,
		store:    NewStore(scope, CreateOrderState{Draft: d.Snapshot()}),
		orders:   orders,
		products: products,
		strategy: strategy,
		draft:    d,
	}
}

func (s *CreateOrderScreen) State() CreateOrderState { return s.store.Get() }

func (s *CreateOrderScreen) Observe(fn func(CreateOrderState)) { s.store.Observe(fn) }

// Add добавляет в корзину одну единицу товара.
func (s *CreateOrderScreen) Add(p model.Product) {
	s.mutate(func(d *draft.Order) { d.Add(draft.RefOf(p)) })
}

func (s *CreateOrderScreen) AddProduct(p model.Product, quantity float64) {
	s.mutate(func(d *draft.Order) { d.AddProduct(draft.RefOf(p), quantity) })
}

func (s *CreateOrderScreen) UpdateQuantity(productID int64, quantity float64) {
	s.mutate(func(d *draft.Order) { d.UpdateQuantity(productID, quantity) })
}

func (s *CreateOrderScreen) UpdatePrice(productID int64, price float64) {
	s.mutate(func(d *draft.Order) { d.UpdatePrice(productID, price) })
}

func (s *CreateOrderScreen) RemoveItem(productID int64) {
	s.mutate(func(d *draft.Order) { d.RemoveItem(productID) })
}

func (s *CreateOrderScreen) SetDiscount(amount float64) {
	s.mutate(func(d *draft.Order) { d.SetDiscount(amount) })
}

// SetClient привязывает заказ к клиенту. nil снимает привязку.
func (s *CreateOrderScreen) SetClient(c *model.Client) {
	s.mutate(func(d *draft.Order) {
		if c == nil {
			d.SetClient(nil, "")
			return
		}
		id := c.ID
		d.SetClient(&id, c.Name)
	})
}

func (s *CreateOrderScreen) SetPaymentMethod(m model.PaymentMethodKind) {
	s.mutate(func(d *draft.Order) { d.SetPaymentMethod(m) })
}

func (s *CreateOrderScreen) SetNotes(text string) {
	s.mutate(func(d *draft.Order) { d.SetNotes(text) })
}

// ClearError скрывает показанную ошибку.
func (s *CreateOrderScreen) ClearError() {
	s.store.Update(func(st CreateOrderState) CreateOrderState {
		st.Error = ""
		return st
	})
}

// SearchProducts ищет активные товары для добавления в корзину.
func (s *CreateOrderScreen) SearchProducts(query string) bool {
	if s.products == nil {
		return false
	}
	active := true
	f := model.ProductFilter{Search: query, IsActive: &active}

	return consume(s.scope, func(ctx context.Context) resource.Stream[model.Page[model.Product]] {
		return s.products.List(ctx, 1, 0, f)
	}, func(r resource.Resource[model.Page[model.Product]]) {
		s.store.Update(func(st CreateOrderState) CreateOrderState {
			switch r := r.(type) {
			case resource.Loading[model.Page[model.Product]]:
				st.ProductsLoading = true
			case resource.Success[model.Page[model.Product]]:
				st.ProductsLoading = false
				st.Products = append([]model.Product(nil), r.Value.Items...)
			case resource.Error[model.Page[model.Product]]:
				st.ProductsLoading = false
				st.Error = r.Message
			}
			return st
		})
	})
}

// Submit отправляет черновик. Пустой черновик даёт ошибку без обращения к серверу.
// Пока отправка идёт, черновик не меняется: изменения корзины игнорируются.
// При успехе черновик очищается, а созданный заказ сохраняется в состоянии.
func (s *CreateOrderScreen) Submit(finalize bool) bool {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return false
	}
	sub, err := repository.NewSubmission(s.draft, finalize, s.strategy)
	if err != nil {
		s.mu.Unlock()
		s.store.Update(func(st CreateOrderState) CreateOrderState {
			st.Error = repository.Message(err, err.Error())
			return st
		})
		return false
	}
	s.submitting = true
	s.mu.Unlock()

	s.store.Update(func(st CreateOrderState) CreateOrderState {
		st.Submitting = true
		st.Error = ""
		st.Created = nil
		st.Partial = nil
		return st
	})

	launched := s.scope.Launch(func(ctx context.Context) {
		for r := range s.orders.Submit(ctx, sub) {
			s.applySubmit(r)
		}
		// Поток мог закрыться без терминального состояния при отмене области.
		s.finishSubmit(false)
	})
	if !launched {
		s.finishSubmit(false)
		s.store.Update(func(st CreateOrderState) CreateOrderState {
			st.Submitting = false
			return st
		})
	}
	return launched
}

// finishSubmit снимает блокировку черновика и при reset очищает его. Возвращает снимок черновика.
func (s *CreateOrderScreen) finishSubmit(reset bool) draft.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if reset {
		s.draft.Reset()
	}
	return s.draft.Snapshot()
}

func (s *CreateOrderScreen) applySubmit(r resource.Resource[model.Order]) {
	switch r := r.(type) {
	case resource.Success[model.Order]:
		snap := s.finishSubmit(true)
		order := r.Value
		s.store.Update(func(st CreateOrderState) CreateOrderState {
			st.Submitting = false
			st.Created = &order
			st.Draft = snap
			return st
		})
	case resource.Error[model.Order]:
		s.finishSubmit(false)
		partial, hasPartial := r.Data()
		s.store.Update(func(st CreateOrderState) CreateOrderState {
			st.Submitting = false
			st.Error = r.Message
			if hasPartial {
				st.Partial = &partial
			}
			return st
		})
	}
}

func (s *CreateOrderScreen) mutate(fn func(d *draft.Order)) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return
	}
	fn(s.draft)
	snap := s.draft.Snapshot()
	s.mu.Unlock()

	s.store.Update(func(st CreateOrderState) CreateOrderState {
		st.Draft = snap
		return st
	})
}
