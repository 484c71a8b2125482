package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"storefront/internal/backend"
	"storefront/internal/domain"
)

type CatalogService struct {
	Backend *backend.Client
	sfg     singleflight.Group // collapses concurrent fetches of one product
}

func NewCatalogService(b *backend.Client) *CatalogService {
	return &CatalogService{Backend: b}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("products", func() (interface{}, error) {
		return s.Backend.Products(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	v, err, _ := s.sfg.Do("product:"+id, func() (interface{}, error) {
		return s.Backend.Product(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

func (s *CatalogService) SellerProducts(ctx context.Context, token string) ([]domain.Product, error) {
	return s.Backend.SellerProducts(ctx, token)
}
