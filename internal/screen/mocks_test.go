package screen

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/session"
)

// stream возвращает закрытый поток из заданных состояний.
func stream[T any](rs ...resource.Resource[T]) resource.Stream[T] {
	ch := make(chan resource.Resource[T], len(rs))
	for _, r := range rs {
		ch <- r
	}
	close(ch)
	return ch
}

func page[T any](items []T, current, last int) model.Page[T] {
	return model.Page[T]{Items: items, CurrentPage: current, LastPage: last, PerPage: len(items), Total: len(items) * last}
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) List(ctx context.Context, pageNum, perPage int, f model.OrderFilter) resource.Stream[model.Page[model.Order]] {
	return m.Called(pageNum, f).Get(0).(resource.Stream[model.Page[model.Order]])
}

func (m *mockOrders) Get(ctx context.Context, id int64) resource.Stream[model.Order] {
	return m.Called(id).Get(0).(resource.Stream[model.Order])
}

func (m *mockOrders) Delete(ctx context.Context, id int64) resource.Stream[repository.Done] {
	return m.Called(id).Get(0).(resource.Stream[repository.Done])
}

func (m *mockOrders) Finalize(ctx context.Context, id int64, paymentMethodID *int64) resource.Stream[model.Order] {
	return m.Called(id).Get(0).(resource.Stream[model.Order])
}

func (m *mockOrders) Cancel(ctx context.Context, id int64, reason string) resource.Stream[model.Order] {
	return m.Called(id, reason).Get(0).(resource.Stream[model.Order])
}

func (m *mockOrders) Submit(ctx context.Context, s repository.Submission) resource.Stream[model.Order] {
	return m.Called(s).Get(0).(resource.Stream[model.Order])
}

type mockProducts struct{ mock.Mock }

func (m *mockProducts) List(ctx context.Context, pageNum, perPage int, f model.ProductFilter) resource.Stream[model.Page[model.Product]] {
	return m.Called(pageNum, f.Search).Get(0).(resource.Stream[model.Page[model.Product]])
}

type mockAuth struct {
	mock.Mock
	cached *session.CachedUser
}

func (m *mockAuth) Login(ctx context.Context, email, password string) resource.Stream[model.User] {
	return m.Called(email, password).Get(0).(resource.Stream[model.User])
}

func (m *mockAuth) Register(ctx context.Context, req model.RegisterRequest) resource.Stream[model.User] {
	return m.Called(req).Get(0).(resource.Stream[model.User])
}

func (m *mockAuth) Logout(ctx context.Context) resource.Stream[repository.Done] {
	return m.Called().Get(0).(resource.Stream[repository.Done])
}

func (m *mockAuth) CurrentUser(ctx context.Context) resource.Stream[model.User] {
	return m.Called().Get(0).(resource.Stream[model.User])
}

func (m *mockAuth) CachedUser() (session.CachedUser, bool) {
	if m.cached == nil {
		return session.CachedUser{}, false
	}
	return *m.cached, true
}
