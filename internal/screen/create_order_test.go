package screen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
)

var (
	alfajor = model.Product{ID: 1, Name: "Alfajor", Price: 10, Stock: 5, IsActive: true}
	cafe    = model.Product{ID: 2, Name: "Cafe", Price: 5, Stock: 5, IsActive: true}
)

func TestCreateOrder_EmptySubmitSkipsNetwork(t *testing.T) {
	m := &mockOrders{}
	scope := NewScope(context.Background())
	defer scope.Close()
	s := NewCreateOrderScreen(scope, m, nil, repository.SubmitBulk)

	assert.False(t, s.Submit(true))
	scope.Wait()

	st := s.State()
	assert.Equal(t, draft.ErrEmptyOrder.Error(), st.Error)
	assert.False(t, st.Submitting)
	m.AssertNotCalled(t, "Submit", mock.Anything)
}

func TestCreateOrder_TotalsFollowMutations(t *testing.T) {
	scope := NewScope(context.Background())
	defer scope.Close()
	s := NewCreateOrderScreen(scope, &mockOrders{}, nil, repository.SubmitBulk)

	s.AddProduct(alfajor, 2)
	s.Add(cafe)
	s.SetDiscount(3)

	st := s.State()
	assert.Equal(t, 25.0, st.Draft.Subtotal)
	assert.Equal(t, 22.0, st.Draft.Total)

	s.UpdateQuantity(alfajor.ID, 0)
	st = s.State()
	require.Len(t, st.Draft.Items, 1)
	assert.Equal(t, cafe.ID, st.Draft.Items[0].Product.ID)
	assert.Equal(t, 2.0, st.Draft.Total)
}

func TestCreateOrder_SubmitSuccessResetsDraft(t *testing.T) {
	created := model.Order{ID: 42, OrderNumber: "ORD-000042", Status: model.OrderStatusCompleted, Total: 15}

	m := &mockOrders{}
	m.On("Submit", mock.MatchedBy(func(s repository.Submission) bool {
		return s.Strategy == repository.SubmitBulk &&
			s.Request.Status == model.OrderStatusCompleted &&
			len(s.Request.Items) == 2 &&
			s.Names[cafe.ID] == "Cafe"
	})).Return(stream[model.Order](
		resource.Loading[model.Order]{},
		resource.Success[model.Order]{Value: created},
	)).Once()

	scope := NewScope(context.Background())
	defer scope.Close()
	s := NewCreateOrderScreen(scope, m, nil, repository.SubmitBulk)

	client := &model.Client{ID: 7, Name: "Ana"}
	s.SetClient(client)
	s.Add(alfajor)
	s.Add(cafe)

	require.True(t, s.Submit(true))
	scope.Wait()

	st := s.State()
	assert.False(t, st.Submitting)
	require.NotNil(t, st.Created)
	assert.Equal(t, int64(42), st.Created.ID)
	assert.Empty(t, st.Draft.Items, "draft must be reset after a successful submit")
	assert.Nil(t, st.Draft.ClientID)
	m.AssertExpectations(t)
}

func TestCreateOrder_MutationsIgnoredWhileSubmitting(t *testing.T) {
	pending := make(chan resource.Resource[model.Order], 2)

	m := &mockOrders{}
	m.On("Submit", mock.Anything).Return(resource.Stream[model.Order](pending)).Once()

	scope := NewScope(context.Background())
	defer scope.Close()
	s := NewCreateOrderScreen(scope, m, nil, repository.SubmitBulk)

	s.Add(alfajor)
	require.True(t, s.Submit(false))
	assert.False(t, s.Submit(false), "second submit must not start while the first is running")

	s.Add(cafe)
	s.SetDiscount(2)
	st := s.State()
	require.Len(t, st.Draft.Items, 1, "cart is locked during submit")
	assert.Equal(t, 0.0, st.Draft.Discount)

	pending <- resource.Success[model.Order]{Value: model.Order{ID: 3}}
	close(pending)
	scope.Wait()

	assert.Empty(t, s.State().Draft.Items)

	s.Add(cafe)
	assert.Len(t, s.State().Draft.Items, 1, "cart is editable again after submit")
	m.AssertExpectations(t)
}

func TestCreateOrder_SubmitPartialKeepsDraft(t *testing.T) {
	partial := model.Order{ID: 9, OrderNumber: "ORD-000009", Status: model.OrderStatusDraft}

	m := &mockOrders{}
	m.On("Submit", mock.Anything).Return(stream[model.Order](
		resource.Loading[model.Order]{},
		resource.Error[model.Order]{Message: "order ORD-000009 was created, but these products could not be added: Cafe", Stale: &partial},
	)).Once()

	scope := NewScope(context.Background())
	defer scope.Close()
	s := NewCreateOrderScreen(scope, m, nil, repository.SubmitPerItem)

	s.Add(alfajor)
	s.Add(cafe)
	s.Submit(true)
	scope.Wait()

	st := s.State()
	assert.Contains(t, st.Error, "Cafe")
	require.NotNil(t, st.Partial)
	assert.Equal(t, int64(9), st.Partial.ID)
	assert.Nil(t, st.Created)
	assert.Len(t, st.Draft.Items, 2)
}

func TestCreateOrder_SearchProducts(t *testing.T) {
	p := &mockProducts{}
	p.On("List", 1, "caf").Return(stream[model.Page[model.Product]](
		resource.Loading[model.Page[model.Product]]{},
		resource.Success[model.Page[model.Product]]{Value: page([]model.Product{cafe}, 1, 1)},
	)).Once()

	scope := NewScope(context.Background())
	defer scope.Close()
	s := NewCreateOrderScreen(scope, &mockOrders{}, p, repository.SubmitBulk)

	require.True(t, s.SearchProducts("caf"))
	scope.Wait()

	st := s.State()
	assert.False(t, st.ProductsLoading)
	require.Len(t, st.Products, 1)
	assert.Equal(t, "Cafe", st.Products[0].Name)
}
