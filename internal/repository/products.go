package repository

import (
	"context"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
)

// ProductAPI описывает операции каталога на сервере.
type ProductAPI interface {
	ListProducts(ctx context.Context, page, perPage int, f model.ProductFilter) (model.Page[model.Product], error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, req model.CreateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateStock(ctx context.Context, id int64, req model.StockUpdateRequest) (*model.Product, error)
}

// ProductRepository работает с каталогом товаров.
type ProductRepository struct {
	api ProductAPI
}

func NewProductRepository(a ProductAPI) *ProductRepository {
	return &ProductRepository{api: a}
}

func (r *ProductRepository) List(ctx context.Context, page, perPage int, f model.ProductFilter) resource.Stream[model.Page[model.Product]] {
	return resource.Run(ctx, messageFor("could not load products"), func(ctx context.Context) (model.Page[model.Product], error) {
		return r.api.ListProducts(ctx, page, perPage, f)
	})
}

func (r *ProductRepository) Get(ctx context.Context, id int64) resource.Stream[model.Product] {
	return resource.Run(ctx, messageFor("could not load product"), deref(func(ctx context.Context) (*model.Product, error) {
		return r.api.GetProduct(ctx, id)
	}))
}

func (r *ProductRepository) Create(ctx context.Context, req model.CreateProductRequest) resource.Stream[model.Product] {
	return resource.Run(ctx, messageFor("could not create product"), deref(func(ctx context.Context) (*model.Product, error) {
		return r.api.CreateProduct(ctx, req)
	}))
}

func (r *ProductRepository) Update(ctx context.Context, id int64, req model.CreateProductRequest) resource.Stream[model.Product] {
	return resource.Run(ctx, messageFor("could not update product"), deref(func(ctx context.Context) (*model.Product, error) {
		return r.api.UpdateProduct(ctx, id, req)
	}))
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) resource.Stream[Done] {
	return resource.Run(ctx, messageFor("could not delete product"), func(ctx context.Context) (Done, error) {
		return Done{}, r.api.DeleteProduct(ctx, id)
	})
}

// UpdateStock задаёт остаток товара.
func (r *ProductRepository) UpdateStock(ctx context.Context, id int64, stock float64, reason string) resource.Stream[model.Product] {
	return resource.Run(ctx, messageFor("could not update stock"), deref(func(ctx context.Context) (*model.Product, error) {
		return r.api.UpdateStock(ctx, id, model.StockUpdateRequest{Stock: stock, Reason: reason})
	}))
}

// deref превращает операцию, возвращающую указатель, в операцию над значением.
func deref[T any](fn func(ctx context.Context) (*T, error)) resource.Func[T] {
	return func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		return *v, nil
	}
}
