package products

import (
	"context"
	"fmt"
	"log/slog"
)

// Service is the catalog CRUD layer over a product store
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) FindAllProducts(ctx context.Context) ([]*Product, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []*Product{}
	}
	return all, nil
}

func (s *Service) FindProduct(ctx context.Context, id int64) (*Product, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	p, err := s.store.Create(ctx, req.Name, req.Description, req.Price)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		slog.Int64("product_id", p.ID),
		slog.String("name", p.Name),
	)

	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	return s.store.Update(ctx, id, req.Name, req.Description, req.Price)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.Int64("product_id", id))
	return nil
}
