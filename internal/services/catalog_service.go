package services

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type CatalogService struct {
	Prods ProductStore
}

func NewCatalogService(prods ProductStore) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return s.Prods.ListProducts(ctx, f)
}

// Get returns the product and counts the view. A failed counter update
// does not fail the read.
func (s *CatalogService) Get(ctx context.Context, slug string) (domain.Product, error) {
	clean, ok := validate.Slug(slug)
	if !ok {
		return domain.Product{}, domain.NotFound("product %q", slug)
	}
	p, err := s.Prods.ProductBySlug(ctx, clean)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.IncrementViews(ctx, p.ID); err != nil {
		applog.Warn(nil, "product.views", err, map[string]any{"product_id": p.ID})
	} else {
		p.ViewCount++
	}
	return p, nil
}

// SetPrice changes the catalog price. Existing orders keep the price they
// were placed at.
func (s *CatalogService) SetPrice(ctx context.Context, slug string, price decimal.Decimal) (domain.Product, error) {
	if !price.IsPositive() {
		return domain.Product{}, domain.Validation("price must be greater than 0")
	}
	p, err := s.Prods.ProductBySlug(ctx, slug)
	if err != nil {
		return domain.Product{}, err
	}
	price = price.Round(2)
	if err := s.Prods.UpdatePrice(ctx, p.ID, price); err != nil {
		return domain.Product{}, err
	}
	applog.Audit(nil, "product.price", map[string]any{
		"product_id": p.ID, "old": p.Price.StringFixed(2), "new": price.StringFixed(2),
	})
	p.Price = price
	return p, nil
}
