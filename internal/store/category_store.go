package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
	"github.com/wardrobeassistant/wardrobe/internal/domain"
)

const (
	categoriesTable  = "categories"
	categoryColumns  = "id, name, display_order, created_at"
	categoryOrdering = "display_order ASC, rowid ASC"

	// summaryQuery counts items in the same statement that reads the
	// category, so a concurrent cascade is seen entirely or not at all.
	summaryQuery = `
		SELECT c.id, c.name, c.display_order, c.created_at,
			(SELECT COUNT(*) FROM items i WHERE i.category_id = c.id) AS item_count
		FROM categories c`
)

type CategoryStore struct {
	db *sqlx.DB
}

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, name string, displayOrder int) (*domain.Category, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category id: %w", err)
	}

	category := &domain.Category{
		ID:           id.String(),
		Name:         name,
		DisplayOrder: displayOrder,
		CreatedAt:    time.Now().UTC(),
	}
	if err := insertCategory(ctx, s.db, category); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, category.ID)
}

func insertCategory(ctx context.Context, e sqlx.ExtContext, c *domain.Category) error {
	_, err := sqlx.NamedExecContext(ctx, e, `
		INSERT INTO categories (id, name, display_order, created_at)
		VALUES (:id, :name, :display_order, :created_at)
	`, c)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no category has the given id.
func (s *CategoryStore) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	category := &domain.Category{}
	err := s.db.GetContext(ctx, category, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// List returns every category by display order. Equal display orders keep
// insertion order.
func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	if err := s.db.SelectContext(ctx, &categories, `
		SELECT `+categoryColumns+` FROM categories ORDER BY `+categoryOrdering); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListWithCounts returns every category with its item count, ordered as List.
func (s *CategoryStore) ListWithCounts(ctx context.Context) ([]*domain.CategorySummary, error) {
	summaries := []*domain.CategorySummary{}
	if err := s.db.SelectContext(ctx, &summaries,
		summaryQuery+` ORDER BY c.display_order ASC, c.rowid ASC`); err != nil {
		return nil, fmt.Errorf("failed to list category summaries: %w", err)
	}
	return summaries, nil
}

// GetWithCount returns nil, nil when no category has the given id.
func (s *CategoryStore) GetWithCount(ctx context.Context, id string) (*domain.CategorySummary, error) {
	summary := &domain.CategorySummary{}
	err := s.db.GetContext(ctx, summary, summaryQuery+` WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category summary: %w", err)
	}
	return summary, nil
}

func (s *CategoryStore) Update(ctx context.Context, id, name string, displayOrder int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, display_order = ? WHERE id = ?
	`, name, displayOrder, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrCategoryNotFound
	}

	return nil
}

// Delete removes the category and every item filed under it in one
// transaction and reports how many items went with it.
func (s *CategoryStore) Delete(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		// The FK cascade would do this too; deleting explicitly keeps the
		// count and does not depend on the foreign_keys pragma.
		result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE category_id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		if removed, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperrors.ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// GetWithItems reads a category and its items from a single snapshot.
// It returns nil, nil, nil when the category does not exist.
func (s *CategoryStore) GetWithItems(ctx context.Context, id string) (*domain.Category, []*domain.Item, error) {
	var category *domain.Category
	items := []*domain.Item{}
	err := withReadTx(ctx, s.db, func(tx *sqlx.Tx) error {
		c := &domain.Category{}
		err := tx.GetContext(ctx, c, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		category = c

		if err := tx.SelectContext(ctx, &items, `
			SELECT `+itemColumns+` FROM items WHERE category_id = ? ORDER BY `+itemOrdering, id); err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return category, items, nil
}

// SeedDefaults inserts names with display orders 1..n, but only when the
// catalog has no categories at all. The emptiness check and the inserts
// share one transaction, so repeated calls never duplicate the seed.
func (s *CategoryStore) SeedDefaults(ctx context.Context, names []string) (bool, error) {
	seeded := false
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories`); err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for i, name := range names {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate category id: %w", err)
			}
			c := &domain.Category{ID: id.String(), Name: name, DisplayOrder: i + 1, CreatedAt: now}
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}
