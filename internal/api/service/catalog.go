package service

import (
	"context"

	"github.com/slicelab/pizzeria/internal/api/domain"
	"github.com/slicelab/pizzeria/internal/api/store"
)

// CatalogService serves the read-only reference data: ingredients, tags and
// the shop (tenant) directory.
type CatalogService struct {
	Store store.Store
}

func (s *CatalogService) Ingredients(ctx context.Context) ([]domain.Ingredient, error) {
	return s.Store.Catalog().ListIngredients(ctx)
}

func (s *CatalogService) Tags(ctx context.Context) ([]domain.Tag, error) {
	return s.Store.Catalog().ListTags(ctx)
}

func (s *CatalogService) Shops(ctx context.Context) ([]domain.Shop, error) {
	return s.Store.Catalog().ListShops(ctx)
}
