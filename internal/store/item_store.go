package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
	"github.com/wardrobeassistant/wardrobe/internal/domain"
)

const (
	itemsTable   = "items"
	itemColumns  = "id, category_id, picture_data, created_at, name, is_favorite, price"
	itemOrdering = "created_at ASC, rowid ASC"
)

type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

// Create inserts a new item. The category must exist at the moment of the
// insert; otherwise apperrors.ErrUnknownCategory is returned and nothing is
// written.
func (s *ItemStore) Create(ctx context.Context, f domain.ItemFields) (*domain.Item, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate item id: %w", err)
	}

	item := &domain.Item{
		ID:          id.String(),
		CategoryID:  f.CategoryID,
		PictureData: f.PictureData,
		CreatedAt:   time.Now().UTC(),
		Name:        f.Name,
		IsFavorite:  f.IsFavorite,
		Price:       f.Price,
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		ok, err := exists(ctx, tx, categoriesTable, f.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrUnknownCategory
		}

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO items (id, category_id, picture_data, created_at, name, is_favorite, price)
			VALUES (:id, :category_id, :picture_data, :created_at, :name, :is_favorite, :price)
		`, item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, item.ID)
}

// GetByID returns nil, nil when no item has the given id.
func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item := &domain.Item{}
	err := s.db.GetContext(ctx, item, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// ListByCategoryID returns the items filed under categoryID, oldest first.
// An unknown category yields an empty result, not an error.
func (s *ItemStore) ListByCategoryID(ctx context.Context, categoryID string) ([]*domain.Item, error) {
	items := []*domain.Item{}
	if err := s.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+` FROM items
		WHERE category_id = ? ORDER BY `+itemOrdering, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) CountByCategoryID(ctx context.Context, categoryID string) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items WHERE category_id = ?`, categoryID); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// Update rewrites the item's category and optional fields, replacing the
// picture only when f.PictureData is non-empty.
func (s *ItemStore) Update(ctx context.Context, id string, f domain.ItemFields) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		ok, err := exists(ctx, tx, itemsTable, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrItemNotFound
		}

		ok, err = exists(ctx, tx, categoriesTable, f.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrUnknownCategory
		}

		sets := []string{"category_id = ?", "name = ?", "is_favorite = ?", "price = ?"}
		args := []any{f.CategoryID, f.Name, f.IsFavorite, f.Price}
		if len(f.PictureData) > 0 {
			sets = append(sets, "picture_data = ?")
			args = append(args, f.PictureData)
		}
		args = append(args, id)

		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrItemNotFound
	}

	return nil
}
