package repository

import (
	"context"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
)

// ClientAPI описывает операции со справочником клиентов на сервере.
type ClientAPI interface {
	ListClients(ctx context.Context, page, perPage int, f model.ClientFilter) (model.Page[model.Client], error)
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	CreateClient(ctx context.Context, req model.CreateClientRequest) (*model.Client, error)
	UpdateClient(ctx context.Context, id int64, req model.CreateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

// ClientRepository работает со справочником клиентов.
type ClientRepository struct {
	api ClientAPI
}

func NewClientRepository(a ClientAPI) *ClientRepository {
	return &ClientRepository{api: a}
}

func (r *ClientRepository) List(ctx context.Context, page, perPage int, f model.ClientFilter) resource.Stream[model.Page[model.Client]] {
	return resource.Run(ctx, messageFor("could not load clients"), func(ctx context.Context) (model.Page[model.Client], error) {
		return r.api.ListClients(ctx, page, perPage, f)
	})
}

func (r *ClientRepository) Get(ctx context.Context, id int64) resource.Stream[model.Client] {
	return resource.Run(ctx, messageFor("could not load client"), deref(func(ctx context.Context) (*model.Client, error) {
		return r.api.GetClient(ctx, id)
	}))
}

func (r *ClientRepository) Create(ctx context.Context, req model.CreateClientRequest) resource.Stream[model.Client] {
	return resource.Run(ctx, messageFor("could not create client"), deref(func(ctx context.Context) (*model.Client, error) {
		return r.api.CreateClient(ctx, req)
	}))
}

func (r *ClientRepository) Update(ctx context.Context, id int64, req model.CreateClientRequest) resource.Stream[model.Client] {
	return resource.Run(ctx, messageFor("could not update client"), deref(func(ctx context.Context) (*model.Client, error) {
		return r.api.UpdateClient(ctx, id, req)
	}))
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) resource.Stream[Done] {
	return resource.Run(ctx, messageFor("could not delete client"), func(ctx context.Context) (Done, error) {
		return Done{}, r.api.DeleteClient(ctx, id)
	})
}

// PaymentMethodAPI описывает справочник способов оплаты на сервере.
type PaymentMethodAPI interface {
	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
}

// PaymentMethodRepository читает способы оплаты.
type PaymentMethodRepository struct {
	api PaymentMethodAPI
}

func NewPaymentMethodRepository(a PaymentMethodAPI) *PaymentMethodRepository {
	return &PaymentMethodRepository{api: a}
}

// List возвращает способы оплаты.
func (r *PaymentMethodRepository) List(ctx context.Context) resource.Stream[[]model.PaymentMethod] {
	return resource.Run(ctx, messageFor("could not load payment methods"), r.api.ListPaymentMethods)
}
