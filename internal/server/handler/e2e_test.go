package handler_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/api"
	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/server/handler"
	"github.com/mmeshcher/gestior/internal/server/service"
	"github.com/mmeshcher/gestior/internal/server/storage"
	"github.com/mmeshcher/gestior/internal/session"
)

type harness struct {
	session  *session.MemoryStore
	auth     *repository.AuthRepository
	products *repository.ProductRepository
	orders   *repository.OrderRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	svc := service.NewService(storage.NewMemoryStorage(), zap.NewNop())
	srv := httptest.NewServer(handler.NewHandler(svc, zap.NewNop()).SetupRouter())
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	client := api.NewClient(srv.URL, store, api.Options{})

	return &harness{
		session:  store,
		auth:     repository.NewAuthRepository(client, store, zap.NewNop()),
		products: repository.NewProductRepository(client),
		orders:   repository.NewOrderRepository(client, zap.NewNop()),
	}
}

func success[T any](t *testing.T, s resource.Stream[T]) T {
	t.Helper()
	r := resource.Last(context.Background(), s)
	ok, isOK := r.(resource.Success[T])
	if !isOK {
		t.Fatalf("expected Success, got %#v", r)
	}
	return ok.Value
}

func (h *harness) signUp(t *testing.T) model.User {
	t.Helper()
	return success(t, h.auth.Register(context.Background(), model.RegisterRequest{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
	}))
}

func (h *harness) product(t *testing.T, name string, price, stock float64) model.Product {
	t.Helper()
	return success(t, h.products.Create(context.Background(), model.CreateProductRequest{
		Name: name, Price: price, Stock: stock,
	}))
}

func TestEndToEnd_AuthLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, session.RouteLogin, session.InitialRoute(h.session))

	u := h.signUp(t)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, session.RouteDashboard, session.InitialRoute(h.session))

	me := success(t, h.auth.CurrentUser(ctx))
	assert.Equal(t, u.ID, me.ID)

	success(t, h.auth.Logout(ctx))
	assert.False(t, h.session.LoggedIn())

	r := resource.Last(ctx, h.auth.Login(ctx, "ana@example.com", "wrong-password"))
	e, ok := r.(resource.Error[model.User])
	require.True(t, ok, "expected Error, got %#v", r)
	assert.NotEmpty(t, e.Message)
	assert.False(t, h.session.LoggedIn())

	success(t, h.auth.Login(ctx, "ana@example.com", "secret1"))
	assert.True(t, h.session.LoggedIn())
}

func TestEndToEnd_RevokedTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t)

	stale := h.session.Token()
	success(t, h.auth.Logout(ctx))
	require.NoError(t, h.session.SetToken(stale))

	r := resource.Last(ctx, h.products.List(ctx, 1, 20, model.ProductFilter{}))
	e, ok := r.(resource.Error[model.Page[model.Product]])
	require.True(t, ok, "expected Error, got %#v", r)

	var se *api.StatusError
	require.True(t, errors.As(e.Err, &se))
	assert.Equal(t, 401, se.Code)
}

func TestEndToEnd_BulkSubmitAndPagination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t)

	cafe := h.product(t, "Cafe", 10, 10)
	te := h.product(t, "Te", 4, 10)

	d := draft.New()
	d.AddProduct(draft.RefOf(cafe), 2)
	d.Add(draft.RefOf(te))
	d.SetDiscount(4)

	sub, err := repository.NewSubmission(d, true, repository.SubmitBulk)
	require.NoError(t, err)
	order := success(t, h.orders.Submit(ctx, sub))

	assert.True(t, order.IsCompleted())
	assert.Equal(t, d.Subtotal(), order.Subtotal)
	assert.Equal(t, d.Total(), order.Total)
	assert.Len(t, order.Items, 2)

	got := success(t, h.products.Get(ctx, cafe.ID))
	assert.Equal(t, 8.0, got.Stock)

	for i := 0; i < 2; i++ {
		draftOnly, err := repository.NewSubmission(d, false, repository.SubmitBulk)
		require.NoError(t, err)
		success(t, h.orders.Submit(ctx, draftOnly))
	}

	first := success(t, h.orders.List(ctx, 1, 2, model.OrderFilter{}))
	assert.Equal(t, 3, first.Total)
	assert.True(t, first.HasMore())
	require.Len(t, first.Items, 2)

	second := success(t, h.orders.List(ctx, 2, 2, model.OrderFilter{}))
	assert.False(t, second.HasMore())
	require.Len(t, second.Items, 1)
	assert.Equal(t, order.ID, second.Items[0].ID, "orders are listed newest first")

	drafts := success(t, h.orders.List(ctx, 1, 20, model.OrderFilter{Status: model.OrderStatusDraft}))
	assert.Equal(t, 2, drafts.Total)
}

func TestEndToEnd_PerItemSubmitReportsUnattached(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t)

	cafe := h.product(t, "Cafe", 10, 10)
	te := h.product(t, "Te", 4, 10)

	d := draft.New()
	d.Add(draft.RefOf(cafe))
	d.Add(draft.RefOf(te))

	success(t, h.products.Delete(ctx, te.ID))

	sub, err := repository.NewSubmission(d, true, repository.SubmitPerItem)
	require.NoError(t, err)

	r := resource.Last(ctx, h.orders.Submit(ctx, sub))
	e, ok := r.(resource.Error[model.Order])
	require.True(t, ok, "expected Error, got %#v", r)
	assert.Contains(t, e.Message, "Te")
	require.NotNil(t, e.Stale)
	assert.True(t, e.Stale.IsDraft(), "order stays a draft when an item is missing")
	require.Len(t, e.Stale.Items, 1)
	assert.Equal(t, cafe.ID, e.Stale.Items[0].ProductID)
}

func TestEndToEnd_PerItemSubmitFinalizes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t)

	cafe := h.product(t, "Cafe", 10, 10)

	d := draft.New()
	d.AddProduct(draft.RefOf(cafe), 3)

	sub, err := repository.NewSubmission(d, true, repository.SubmitPerItem)
	require.NoError(t, err)
	order := success(t, h.orders.Submit(ctx, sub))

	assert.True(t, order.IsCompleted())
	assert.Equal(t, 30.0, order.Total)

	canceled := success(t, h.orders.Cancel(ctx, order.ID, " duplicado "))
	assert.True(t, canceled.IsCanceled())
	assert.Equal(t, "duplicado", canceled.CancelReason)

	got := success(t, h.products.Get(ctx, cafe.ID))
	assert.Equal(t, 10.0, got.Stock, "cancel returns stock")
}
