package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/server/storage"
)

func (s *Service) ListProducts(ctx context.Context, userID int64, p storage.ListParams, f model.ProductFilter) (model.Page[model.Product], error) {
	items, total, err := s.store.ListProducts(ctx, userID, p, f)
	if err != nil {
		return model.Page[model.Product]{}, err
	}
	return NewPage(items, total, p), nil
}

func (s *Service) GetProduct(ctx context.Context, userID, id int64) (*model.Product, error) {
	return s.store.GetProduct(ctx, userID, id)
}

// CreateProduct создаёт товар. Новый товар активен, если не указано иное.
func (s *Service) CreateProduct(ctx context.Context, userID int64, req model.CreateProductRequest) (*model.Product, error) {
	p := model.Product{IsActive: true}
	if err := applyProduct(&p, req); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveProduct(ctx, userID, p)
	if err != nil {
		return nil, productError(err)
	}
	return &saved, nil
}

func (s *Service) UpdateProduct(ctx context.Context, userID, id int64, req model.CreateProductRequest) (*model.Product, error) {
	p, err := s.store.GetProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyProduct(p, req); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveProduct(ctx, userID, *p)
	if err != nil {
		return nil, productError(err)
	}
	return &saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, userID, id int64) error {
	return s.store.DeleteProduct(ctx, userID, id)
}

// UpdateStock устанавливает остаток товара.
func (s *Service) UpdateStock(ctx context.Context, userID, id int64, req model.StockUpdateRequest) (*model.Product, error) {
	if req.Stock < 0 {
		return nil, invalid("stock", "the stock must be at least 0")
	}

	p, err := s.store.GetProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	before := p.Stock
	p.Stock = req.Stock
	saved, err := s.store.SaveProduct(ctx, userID, *p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock updated",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", id),
		zap.Float64("from", before),
		zap.Float64("to", saved.Stock),
		zap.String("reason", req.Reason),
	)
	return &saved, nil
}

func applyProduct(p *model.Product, req model.CreateProductRequest) error {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return invalid("name", "the name field is required")
	case req.Price < 0:
		return invalid("price", "the price must be at least 0")
	case req.CostPrice != nil && *req.CostPrice < 0:
		return invalid("cost_price", "the cost price must be at least 0")
	case req.Stock < 0:
		return invalid("stock", "the stock must be at least 0")
	case req.MinStock < 0:
		return invalid("min_stock", "the min stock must be at least 0")
	}

	p.Name = name
	p.SKU = strings.TrimSpace(req.SKU)
	p.Barcode = strings.TrimSpace(req.Barcode)
	p.Description = req.Description
	p.Category = strings.TrimSpace(req.Category)
	p.Unit = req.Unit
	p.Price = round2(req.Price)
	p.CostPrice = req.CostPrice
	p.Stock = req.Stock
	p.MinStock = req.MinStock
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return nil
}

func productError(err error) error {
	if isConflict(err) {
		return invalid("sku", "the sku has already been taken")
	}
	return err
}

func (s *Service) ListClients(ctx context.Context, userID int64, p storage.ListParams, f model.ClientFilter) (model.Page[model.Client], error) {
	items, total, err := s.store.ListClients(ctx, userID, p, f)
	if err != nil {
		return model.Page[model.Client]{}, err
	}
	return NewPage(items, total, p), nil
}

func (s *Service) GetClient(ctx context.Context, userID, id int64) (*model.Client, error) {
	return s.store.GetClient(ctx, userID, id)
}

func (s *Service) CreateClient(ctx context.Context, userID int64, req model.CreateClientRequest) (*model.Client, error) {
	c := model.Client{IsActive: true}
	if err := applyClient(&c, req); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveClient(ctx, userID, c)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) UpdateClient(ctx context.Context, userID, id int64, req model.CreateClientRequest) (*model.Client, error) {
	c, err := s.store.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyClient(c, req); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveClient(ctx, userID, *c)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) DeleteClient(ctx context.Context, userID, id int64) error {
	return s.store.DeleteClient(ctx, userID, id)
}

func applyClient(c *model.Client, req model.CreateClientRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("name", "the name field is required")
	}
	c.Name = name
	c.Email = strings.TrimSpace(req.Email)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Address = req.Address
	c.DocumentType = req.DocumentType
	c.DocumentNumber = strings.TrimSpace(req.DocumentNumber)
	c.Notes = req.Notes
	return nil
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return s.store.ListPaymentMethods(ctx)
}
