package service

import (
	"context"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
	"github.com/wardrobeassistant/wardrobe/internal/domain"
)

// Reads below are derived from the store on every call and never cached.

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryStore.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return categories, nil
}

// CategorySummary bundles a category with its item count for list rendering.
type CategorySummary = domain.CategorySummary

// ListCategorySummaries reads categories and their counts in one statement,
// so a category removed by a concurrent cascade is never listed.
func (s *CatalogService) ListCategorySummaries(ctx context.Context) ([]*CategorySummary, error) {
	summaries, err := s.categoryStore.ListWithCounts(ctx)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return summaries, nil
}

func (s *CatalogService) GetCategorySummary(ctx context.Context, id string) (*CategorySummary, error) {
	summary, err := s.categoryStore.GetWithCount(ctx, id)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	if summary == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	return summary, nil
}

// ListItems returns the items of one category, oldest first. An unknown
// category id yields an empty list.
func (s *CatalogService) ListItems(ctx context.Context, categoryID string) ([]*domain.Item, error) {
	items, err := s.itemStore.ListByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return items, nil
}

func (s *CatalogService) CountItems(ctx context.Context, categoryID string) (int, error) {
	count, err := s.itemStore.CountByCategoryID(ctx, categoryID)
	if err != nil {
		return 0, apperrors.Persistence(err)
	}
	return count, nil
}

// GetCategoryWithItems reads a category and its items from one snapshot.
func (s *CatalogService) GetCategoryWithItems(ctx context.Context, categoryID string) (*domain.Category, []*domain.Item, error) {
	category, items, err := s.categoryStore.GetWithItems(ctx, categoryID)
	if err != nil {
		return nil, nil, apperrors.Persistence(err)
	}
	if category == nil {
		return nil, nil, apperrors.ErrCategoryNotFound
	}
	return category, items, nil
}
