package repository

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/gestior/internal/api"
	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
)

// fakeOrderAPI хранит один заказ и отклоняет позиции из reject.
type fakeOrderAPI struct {
	mu       sync.Mutex
	reject   map[int64]bool
	created  []model.CreateOrderRequest
	added    []int64
	finalize int
	order    model.Order
}

func (f *fakeOrderAPI) ListOrders(ctx context.Context, page, perPage int, flt model.OrderFilter) (model.Page[model.Order], error) {
	return model.Page[model.Order]{Items: []model.Order{f.order}, CurrentPage: 1, LastPage: 1}, nil
}

func (f *fakeOrderAPI) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o := f.order
	return &o, nil
}

func (f *fakeOrderAPI) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, req)
	f.order = model.Order{ID: 10, OrderNumber: "ORD-000010", Status: req.Status}
	for _, it := range req.Items {
		f.order.Items = append(f.order.Items, model.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o := f.order
	return &o, nil
}

func (f *fakeOrderAPI) UpdateOrder(ctx context.Context, id int64, req model.CreateOrderRequest) (*model.Order, error) {
	return f.CreateOrder(ctx, req)
}

func (f *fakeOrderAPI) DeleteOrder(ctx context.Context, id int64) error { return nil }

func (f *fakeOrderAPI) AddOrderItem(ctx context.Context, orderID int64, item model.CreateOrderItemRequest) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.reject[item.ProductID] {
		return nil, &api.StatusError{Code: http.StatusUnprocessableEntity, Message: "insufficient stock"}
	}
	f.added = append(f.added, item.ProductID)
	f.order.Items = append(f.order.Items, model.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	o := f.order
	return &o, nil
}

func (f *fakeOrderAPI) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*model.Order, error) {
	o := f.order
	return &o, nil
}

func (f *fakeOrderAPI) FinalizeOrder(ctx context.Context, id int64, req model.FinalizeOrderRequest) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finalize++
	f.order.Status = model.OrderStatusCompleted
	f.order.PaymentStatus = req.PaymentStatus
	o := f.order
	return &o, nil
}

func (f *fakeOrderAPI) CancelOrder(ctx context.Context, id int64, reason string) (*model.Order, error) {
	o := f.order
	o.Status = model.OrderStatusCanceled
	o.CancelReason = reason
	return &o, nil
}

func threeItemDraft() *draft.Order {
	d := draft.New()
	d.AddProduct(draft.ProductRef{ID: 1, Name: "Alfajor", Price: 10}, 2)
	d.AddProduct(draft.ProductRef{ID: 2, Name: "Cafe", Price: 5}, 1)
	d.AddProduct(draft.ProductRef{ID: 3, Name: "Te", Price: 3}, 4)
	return d
}

func TestSubmit_EmptyDraft(t *testing.T) {
	_, err := NewSubmission(draft.New(), true, SubmitBulk)
	require.ErrorIs(t, err, draft.ErrEmptyOrder)

	fake := &fakeOrderAPI{}
	repo := NewOrderRepository(fake, nil)

	r := last(t, repo.Submit(context.Background(), Submission{}))
	e, ok := r.(resource.Error[model.Order])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, draft.ErrEmptyOrder.Error(), e.Message)
	assert.Empty(t, fake.created, "no request expected for an empty draft")
}

func TestSubmit_Bulk(t *testing.T) {
	sub, err := NewSubmission(threeItemDraft(), true, SubmitBulk)
	require.NoError(t, err)

	fake := &fakeOrderAPI{}
	repo := NewOrderRepository(fake, nil)

	r := last(t, repo.Submit(context.Background(), sub))
	success, ok := r.(resource.Success[model.Order])
	require.True(t, ok, "got %T", r)

	require.Len(t, fake.created, 1)
	assert.Len(t, fake.created[0].Items, 3)
	assert.Equal(t, model.OrderStatusCompleted, fake.created[0].Status)
	assert.Len(t, success.Value.Items, 3)
	assert.Empty(t, fake.added)
}

func TestSubmit_PerItemFinalizes(t *testing.T) {
	sub, err := NewSubmission(threeItemDraft(), true, SubmitPerItem)
	require.NoError(t, err)

	fake := &fakeOrderAPI{}
	repo := NewOrderRepository(fake, nil)

	r := last(t, repo.Submit(context.Background(), sub))
	success, ok := r.(resource.Success[model.Order])
	require.True(t, ok, "got %T", r)

	require.Len(t, fake.created, 1)
	assert.Empty(t, fake.created[0].Items, "header must be created without items")
	assert.Equal(t, model.OrderStatusDraft, fake.created[0].Status)
	assert.Equal(t, []int64{1, 2, 3}, fake.added)
	assert.Equal(t, 1, fake.finalize)
	assert.Equal(t, model.OrderStatusCompleted, success.Value.Status)
}

func TestSubmit_PerItemDraftSkipsFinalize(t *testing.T) {
	sub, err := NewSubmission(threeItemDraft(), false, SubmitPerItem)
	require.NoError(t, err)

	fake := &fakeOrderAPI{}
	repo := NewOrderRepository(fake, nil)

	r := last(t, repo.Submit(context.Background(), sub))
	_, ok := r.(resource.Success[model.Order])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, 0, fake.finalize)
}

func TestSubmit_PerItemPartialFailureNamesProducts(t *testing.T) {
	sub, err := NewSubmission(threeItemDraft(), true, SubmitPerItem)
	require.NoError(t, err)

	fake := &fakeOrderAPI{reject: map[int64]bool{2: true, 3: true}}
	repo := NewOrderRepository(fake, nil)

	r := last(t, repo.Submit(context.Background(), sub))
	e, ok := r.(resource.Error[model.Order])
	require.True(t, ok, "got %T", r)

	assert.Contains(t, e.Message, "ORD-000010")
	assert.Contains(t, e.Message, "Cafe, Te")
	assert.Equal(t, 0, fake.finalize, "partially created order must not be finalized")

	order, has := e.Data()
	require.True(t, has, "partially created order must be carried as data")
	assert.Equal(t, int64(10), order.ID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(1), order.Items[0].ProductID)

	var se *SubmitError
	require.ErrorAs(t, e.Err, &se)
	assert.Equal(t, []string{"Cafe", "Te"}, se.Unattached)
}

func TestCancel_TrimsReason(t *testing.T) {
	fake := &fakeOrderAPI{order: model.Order{ID: 3}}
	repo := NewOrderRepository(fake, nil)

	r := last(t, repo.Cancel(context.Background(), 3, "  client left "))
	success, ok := r.(resource.Success[model.Order])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, "client left", success.Value.CancelReason)
	assert.True(t, success.Value.IsCanceled())
}

func TestUpdate_SendsRequest(t *testing.T) {
	fake := &fakeOrderAPI{}
	repo := NewOrderRepository(fake, nil)

	discount := 2.0
	req := model.CreateOrderRequest{
		Status:   model.OrderStatusDraft,
		Discount: &discount,
		Items:    []model.CreateOrderItemRequest{{ProductID: 4, Quantity: 3}},
	}

	r := last(t, repo.Update(context.Background(), 10, req))
	success, ok := r.(resource.Success[model.Order])
	require.True(t, ok, "got %T", r)
	require.Len(t, success.Value.Items, 1)
	assert.Equal(t, int64(4), success.Value.Items[0].ProductID)

	require.Len(t, fake.created, 1)
	assert.Equal(t, 2.0, *fake.created[0].Discount)
}
