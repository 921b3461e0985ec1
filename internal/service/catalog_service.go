package service

import (
	"context"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/repository"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

// CatalogProduct is a storefront product with its parsed images and active variants.
type CatalogProduct struct {
	*domain.Product
	ImageURLs []string
	Variants  []*domain.ProductVariant
}

// CatalogService defines catalog read logic
type CatalogService interface {
	ListCategories(ctx context.Context, scope tenant.Scope) ([]*domain.Category, error)
	ListStorefrontProducts(ctx context.Context, scope tenant.Scope, filter repository.ProductFilter) ([]CatalogProduct, int, error)
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(categories repository.CategoryRepository, products repository.ProductRepository) CatalogService {
	return &catalogService{categories: categories, products: products}
}

func (s *catalogService) ListCategories(ctx context.Context, scope tenant.Scope) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListStorefrontProducts lists only active products, whatever the filter says.
func (s *catalogService) ListStorefrontProducts(ctx context.Context, scope tenant.Scope, filter repository.ProductFilter) ([]CatalogProduct, int, error) {
	filter.ActiveOnly = true

	products, total, err := s.products.List(ctx, scope, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	variants, err := s.products.ListVariants(ctx, scope, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list product variants: %w", err)
	}

	result := make([]CatalogProduct, 0, len(products))
	for _, p := range products {
		vs := variants[p.ID]
		if vs == nil {
			vs = []*domain.ProductVariant{}
		}
		result = append(result, CatalogProduct{
			Product:   p,
			ImageURLs: p.ImageURLs(),
			Variants:  vs,
		})
	}

	return result, total, nil
}
