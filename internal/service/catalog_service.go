package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
	"github.com/wardrobeassistant/wardrobe/internal/domain"
	"github.com/wardrobeassistant/wardrobe/internal/events"
)

const maxCategoryNameLen = 200

// categoryRepository is the subset of store.CategoryStore that CatalogService requires.
type categoryRepository interface {
	Create(ctx context.Context, name string, displayOrder int) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	ListWithCounts(ctx context.Context) ([]*domain.CategorySummary, error)
	GetWithCount(ctx context.Context, id string) (*domain.CategorySummary, error)
	Update(ctx context.Context, id, name string, displayOrder int) error
	Delete(ctx context.Context, id string) (int64, error)
	GetWithItems(ctx context.Context, id string) (*domain.Category, []*domain.Item, error)
	SeedDefaults(ctx context.Context, names []string) (bool, error)
}

// itemRepository is the subset of store.ItemStore that CatalogService requires.
type itemRepository interface {
	Create(ctx context.Context, f domain.ItemFields) (*domain.Item, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListByCategoryID(ctx context.Context, categoryID string) ([]*domain.Item, error)
	CountByCategoryID(ctx context.Context, categoryID string) (int, error)
	Update(ctx context.Context, id string, f domain.ItemFields) error
	Delete(ctx context.Context, id string) error
}

type CreateCategoryInput struct {
	Name         string `validate:"required,max=200"`
	DisplayOrder int
}

type UpdateCategoryInput struct {
	Name         string `validate:"required,max=200"`
	DisplayOrder int
}

type CreateItemInput struct {
	CategoryID  string `validate:"required"`
	PictureData []byte `validate:"required,min=1"`
	Name        *string
	IsFavorite  *bool
	Price       *int
}

// UpdateItemInput replaces an item's category and optional fields. An empty
// PictureData keeps the stored picture; nil optional fields clear the value.
type UpdateItemInput struct {
	CategoryID  string `validate:"required"`
	PictureData []byte
	Name        *string
	IsFavorite  *bool
	Price       *int
}

// CatalogService is the only writer of the catalog. Every mutation holds
// writeMu for its duration and publishes an event once it has committed.
type CatalogService struct {
	categoryStore categoryRepository
	itemStore     itemRepository
	broker        *events.Broker
	validate      *validator.Validate
	logger        *zap.Logger

	writeMu sync.Mutex
}

func NewCatalogService(
	categoryStore categoryRepository,
	itemStore itemRepository,
	broker *events.Broker,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categoryStore: categoryStore,
		itemStore:     itemStore,
		broker:        broker,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
}

// SeedDefaultCategories fills an empty catalog with domain.DefaultCategories.
// It reports whether anything was inserted.
func (s *CatalogService) SeedDefaultCategories(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	seeded, err := s.categoryStore.SeedDefaults(ctx, domain.DefaultCategories)
	if err != nil {
		return false, apperrors.Persistence(err)
	}
	if seeded {
		s.logger.Info("seeded default categories", zap.Int("count", len(domain.DefaultCategories)))
		s.broker.Publish(events.Event{Type: events.CatalogSeeded})
	}
	return seeded, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	category, err := s.categoryStore.Create(ctx, in.Name, in.DisplayOrder)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.logger.Info("category created",
		zap.String("category_id", category.ID),
		zap.String("name", category.Name),
		zap.Int("display_order", category.DisplayOrder))
	s.broker.Publish(events.Event{Type: events.CategoryCreated, CategoryID: category.ID})
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categoryStore.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	if category == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in UpdateCategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.categoryStore.Update(ctx, id, in.Name, in.DisplayOrder); err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.logger.Info("category updated", zap.String("category_id", id), zap.String("name", in.Name))
	s.broker.Publish(events.Event{Type: events.CategoryUpdated, CategoryID: id})
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes the category together with all of its items.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, err := s.categoryStore.Delete(ctx, id)
	if err != nil {
		return apperrors.Persistence(err)
	}

	s.logger.Info("category deleted", zap.String("category_id", id), zap.Int64("items_removed", removed))
	s.broker.Publish(events.Event{Type: events.CategoryDeleted, CategoryID: id})
	return nil
}

func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	item, err := s.itemStore.Create(ctx, domain.ItemFields{
		CategoryID:  in.CategoryID,
		PictureData: in.PictureData,
		Name:        in.Name,
		IsFavorite:  in.IsFavorite,
		Price:       in.Price,
	})
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID),
		zap.String("category_id", item.CategoryID),
		zap.Int("picture_bytes", len(item.PictureData)))
	s.broker.Publish(events.Event{Type: events.ItemCreated, CategoryID: item.CategoryID, ItemID: item.ID})
	return item, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.itemStore.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	if item == nil {
		return nil, apperrors.ErrItemNotFound
	}
	return item, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id string, in UpdateItemInput) (*domain.Item, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.itemStore.Update(ctx, id, domain.ItemFields{
		CategoryID:  in.CategoryID,
		PictureData: in.PictureData,
		Name:        in.Name,
		IsFavorite:  in.IsFavorite,
		Price:       in.Price,
	})
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.logger.Info("item updated",
		zap.String("item_id", id),
		zap.String("category_id", in.CategoryID),
		zap.Bool("picture_replaced", len(in.PictureData) > 0))
	s.broker.Publish(events.Event{Type: events.ItemUpdated, CategoryID: in.CategoryID, ItemID: id})
	return s.GetItem(ctx, id)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.itemStore.Delete(ctx, id); err != nil {
		return apperrors.Persistence(err)
	}

	s.logger.Info("item deleted", zap.String("item_id", id))
	s.broker.Publish(events.Event{Type: events.ItemDeleted, ItemID: id})
	return nil
}

// check runs struct validation and maps the first failing field onto the
// catalog's error codes.
func (s *CatalogService) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "PictureData":
		return apperrors.ErrPictureRequired
	case "Name":
		if fe.Tag() == "max" {
			return apperrors.WithMessage(apperrors.ErrValidation,
				fmt.Sprintf("Category name must be at most %d characters", maxCategoryNameLen))
		}
		return apperrors.ErrCategoryNameRequired
	case "CategoryID":
		return apperrors.WithMessage(apperrors.ErrValidation, "Category is required")
	}
	return apperrors.WithMessage(apperrors.ErrValidation,
		fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
}
