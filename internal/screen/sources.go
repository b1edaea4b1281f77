package screen

import (
	"context"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/session"
)

// Репозитории, от которых зависят экраны, реализуются пакетом repository.

// AuthSource описывает вход, регистрацию, выход и профиль пользователя.
type AuthSource interface {
	Login(ctx context.Context, email, password string) resource.Stream[model.User]
	Register(ctx context.Context, req model.RegisterRequest) resource.Stream[model.User]
	Logout(ctx context.Context) resource.Stream[repository.Done]
	CurrentUser(ctx context.Context) resource.Stream[model.User]
	CachedUser() (session.CachedUser, bool)
}

// OrderSource описывает операции экранов заказов.
type OrderSource interface {
	List(ctx context.Context, page, perPage int, f model.OrderFilter) resource.Stream[model.Page[model.Order]]
	Get(ctx context.Context, id int64) resource.Stream[model.Order]
	Delete(ctx context.Context, id int64) resource.Stream[repository.Done]
	Finalize(ctx context.Context, id int64, paymentMethodID *int64) resource.Stream[model.Order]
	Cancel(ctx context.Context, id int64, reason string) resource.Stream[model.Order]
	Submit(ctx context.Context, s repository.Submission) resource.Stream[model.Order]
}

// ProductSource загружает страницы каталога товаров.
type ProductSource interface {
	List(ctx context.Context, page, perPage int, f model.ProductFilter) resource.Stream[model.Page[model.Product]]
}

// ClientSource загружает страницы справочника клиентов.
type ClientSource interface {
	List(ctx context.Context, page, perPage int, f model.ClientFilter) resource.Stream[model.Page[model.Client]]
}

var (
	_ AuthSource    = (*repository.AuthRepository)(nil)
	_ OrderSource   = (*repository.OrderRepository)(nil)
	_ ProductSource = (*repository.ProductRepository)(nil)
	_ ClientSource  = (*repository.ClientRepository)(nil)
)
