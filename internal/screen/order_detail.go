package screen

import (
	"context"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
)

// OrderDetailState описывает состояние экрана заказа.
type OrderDetailState struct {
	Order      *model.Order
	Loading    bool
	Finalizing bool
	Canceling  bool
	Error      string
	// ActionSuccess выставляется после успешного завершения или отмены и сбрасывается AcknowledgeAction.
	ActionSuccess bool
}

// Busy сообщает, что выполняется какая-либо операция.
func (st OrderDetailState) Busy() bool {
	return st.Loading || st.Finalizing || st.Canceling
}

// OrderDetailScreen показывает заказ и выполняет действия над ним.
type OrderDetailScreen struct {
	scope  *Scope
	store  *Store[OrderDetailState]
	orders OrderSource
	id     int64
}

func NewOrderDetailScreen(scope *Scope, orders OrderSource, id int64) *OrderDetailScreen {
	return &OrderDetailScreen{
		scope:  scope,
		store:  NewStore(scope, OrderDetailState{}),
		orders: orders,
		id:     id,
	}
}

func (s *OrderDetailScreen) State() OrderDetailState { return s.store.Get() }

func (s *OrderDetailScreen) Observe(fn func(OrderDetailState)) { s.store.Observe(fn) }

// Load загружает заказ с сервера.
func (s *OrderDetailScreen) Load() bool {
	return consume(s.scope, func(ctx context.Context) resource.Stream[model.Order] {
		return s.orders.Get(ctx, s.id)
	}, func(r resource.Resource[model.Order]) {
		s.store.Update(func(st OrderDetailState) OrderDetailState {
			switch r := r.(type) {
			case resource.Loading[model.Order]:
				st.Loading = true
				st.Error = ""
			case resource.Success[model.Order]:
				order := r.Value
				st.Loading = false
				st.Order = &order
			case resource.Error[model.Order]:
				st.Loading = false
				st.Error = r.Message
			}
			return st
		})
	})
}

// Finalize завершает заказ. Не запускается, пока выполняется другое действие.
func (s *OrderDetailScreen) Finalize(paymentMethodID *int64) bool {
	if !s.begin(func(st *OrderDetailState) { st.Finalizing = true }) {
		return false
	}
	return consume(s.scope, func(ctx context.Context) resource.Stream[model.Order] {
		return s.orders.Finalize(ctx, s.id, paymentMethodID)
	}, s.applyAction(func(st *OrderDetailState) { st.Finalizing = false }))
}

// Cancel отменяет заказ с необязательной причиной.
func (s *OrderDetailScreen) Cancel(reason string) bool {
	if !s.begin(func(st *OrderDetailState) { st.Canceling = true }) {
		return false
	}
	return consume(s.scope, func(ctx context.Context) resource.Stream[model.Order] {
		return s.orders.Cancel(ctx, s.id, reason)
	}, s.applyAction(func(st *OrderDetailState) { st.Canceling = false }))
}

func (s *OrderDetailScreen) ClearError() {
	s.store.Update(func(st OrderDetailState) OrderDetailState {
		st.Error = ""
		return st
	})
}

// AcknowledgeAction сбрасывает флаг ActionSuccess после того, как пользователь увидел результат.
func (s *OrderDetailScreen) AcknowledgeAction() {
	s.store.Update(func(st OrderDetailState) OrderDetailState {
		st.ActionSuccess = false
		return st
	})
}

func (s *OrderDetailScreen) begin(mark func(st *OrderDetailState)) bool {
	started := false
	s.store.Update(func(st OrderDetailState) OrderDetailState {
		if st.Finalizing || st.Canceling {
			return st
		}
		started = true
		mark(&st)
		st.Error = ""
		st.ActionSuccess = false
		return st
	})
	return started
}

func (s *OrderDetailScreen) applyAction(done func(st *OrderDetailState)) func(resource.Resource[model.Order]) {
	return func(r resource.Resource[model.Order]) {
		s.store.Update(func(st OrderDetailState) OrderDetailState {
			switch r := r.(type) {
			case resource.Success[model.Order]:
				order := r.Value
				done(&st)
				st.Order = &order
				st.ActionSuccess = true
			case resource.Error[model.Order]:
				done(&st)
				st.Error = r.Message
			}
			return st
		})
	}
}
