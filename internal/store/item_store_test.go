package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
	"github.com/wardrobeassistant/wardrobe/internal/domain"
)

func createCategory(t *testing.T, s *CategoryStore, name string, order int) *domain.Category {
	t.Helper()
	c, err := s.Create(context.Background(), name, order)
	require.NoError(t, err)
	return c
}

func TestItemStoreCreate(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)

	item, err := items.Create(context.Background(), domain.ItemFields{
		CategoryID:  tops.ID,
		PictureData: pngHeader,
		Name:        strPtr("T-Shirt"),
		IsFavorite:  boolPtr(false),
		Price:       intPtr(2000),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, tops.ID, item.CategoryID)
	assert.Equal(t, pngHeader, item.PictureData)
	require.NotNil(t, item.Name)
	assert.Equal(t, "T-Shirt", *item.Name)
	require.NotNil(t, item.IsFavorite)
	assert.False(t, *item.IsFavorite)
	require.NotNil(t, item.Price)
	assert.Equal(t, 2000, *item.Price)
}

func TestItemStoreCreateKeepsUnsetFieldsNil(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)

	item, err := items.Create(context.Background(), domain.ItemFields{CategoryID: tops.ID, PictureData: pngHeader})
	require.NoError(t, err)
	assert.Nil(t, item.Name)
	assert.Nil(t, item.IsFavorite)
	assert.Nil(t, item.Price)
}

func TestItemStoreCreateZeroValuesAreNotUnset(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)

	item, err := items.Create(context.Background(), domain.ItemFields{
		CategoryID:  tops.ID,
		PictureData: pngHeader,
		Name:        strPtr(""),
		IsFavorite:  boolPtr(false),
		Price:       intPtr(0),
	})
	require.NoError(t, err)
	require.NotNil(t, item.Name)
	require.NotNil(t, item.IsFavorite)
	require.NotNil(t, item.Price)
	assert.Equal(t, "", *item.Name)
	assert.Equal(t, 0, *item.Price)
}

func TestItemStoreCreate_UnknownCategory(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	ctx := context.Background()

	item, err := items.Create(ctx, domain.ItemFields{CategoryID: "no-such-category", PictureData: pngHeader})
	assert.ErrorIs(t, err, apperrors.ErrUnknownCategory)
	assert.Nil(t, item)

	var count int
	require.NoError(t, d.Get(&count, `SELECT COUNT(*) FROM items`))
	assert.Zero(t, count)
}

func TestItemStoreListByCategoryID(t *testing.T) {
	d := openTestDB(t)
	categories := NewCategoryStore(d)
	tops := createCategory(t, categories, "Tops", 1)
	shoes := createCategory(t, categories, "Shoes", 2)
	items := NewItemStore(d)
	ctx := context.Background()

	var want []string
	for _, name := range []string{"Polo", "Blouse", "Hoodie"} {
		item, err := items.Create(ctx, domain.ItemFields{CategoryID: tops.ID, PictureData: pngHeader, Name: strPtr(name)})
		require.NoError(t, err)
		want = append(want, item.ID)
	}
	_, err := items.Create(ctx, domain.ItemFields{CategoryID: shoes.ID, PictureData: pngHeader})
	require.NoError(t, err)

	list, err := items.ListByCategoryID(ctx, tops.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(list))
	for _, item := range list {
		got = append(got, item.ID)
	}
	assert.Equal(t, want, got)

	again, err := items.ListByCategoryID(ctx, tops.ID)
	require.NoError(t, err)
	assert.Equal(t, list, again, "order must be stable across repeated reads")
}

func TestItemStoreListByCategoryID_Unknown(t *testing.T) {
	items := NewItemStore(openTestDB(t))

	list, err := items.ListByCategoryID(context.Background(), "no-such-category")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestItemStoreCountByCategoryID(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := items.Create(ctx, domain.ItemFields{CategoryID: tops.ID, PictureData: pngHeader})
		require.NoError(t, err)
	}

	count, err := items.CountByCategoryID(ctx, tops.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestItemStoreUpdate(t *testing.T) {
	d := openTestDB(t)
	categories := NewCategoryStore(d)
	tops := createCategory(t, categories, "Tops", 1)
	outer := createCategory(t, categories, "Outerwear", 2)
	items := NewItemStore(d)
	ctx := context.Background()

	item, err := items.Create(ctx, domain.ItemFields{
		CategoryID:  tops.ID,
		PictureData: pngHeader,
		Name:        strPtr("Jacket"),
		Price:       intPtr(5000),
	})
	require.NoError(t, err)

	newPicture := []byte("GIF89a-new-picture")
	err = items.Update(ctx, item.ID, domain.ItemFields{
		CategoryID:  outer.ID,
		PictureData: newPicture,
		Name:        strPtr("Rain Jacket"),
		IsFavorite:  boolPtr(true),
	})
	require.NoError(t, err)

	updated, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, outer.ID, updated.CategoryID)
	assert.Equal(t, newPicture, updated.PictureData)
	assert.Equal(t, "Rain Jacket", *updated.Name)
	assert.True(t, *updated.IsFavorite)
	assert.Nil(t, updated.Price, "a nil price clears the stored value")
	assert.True(t, item.CreatedAt.Equal(updated.CreatedAt))
}

func TestItemStoreUpdateKeepsPictureWhenEmpty(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)
	ctx := context.Background()

	item, err := items.Create(ctx, domain.ItemFields{CategoryID: tops.ID, PictureData: pngHeader})
	require.NoError(t, err)

	require.NoError(t, items.Update(ctx, item.ID, domain.ItemFields{CategoryID: tops.ID, Name: strPtr("Tee")}))

	updated, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, updated.PictureData)
}

func TestItemStoreUpdate_NotFound(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)

	err := items.Update(context.Background(), "no-such-item", domain.ItemFields{CategoryID: tops.ID})
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
}

func TestItemStoreUpdate_UnknownCategory(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)
	ctx := context.Background()

	item, err := items.Create(ctx, domain.ItemFields{CategoryID: tops.ID, PictureData: pngHeader})
	require.NoError(t, err)

	err = items.Update(ctx, item.ID, domain.ItemFields{CategoryID: "gone"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownCategory)

	unchanged, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, tops.ID, unchanged.CategoryID)
}

func TestItemStoreDelete(t *testing.T) {
	d := openTestDB(t)
	tops := createCategory(t, NewCategoryStore(d), "Tops", 1)
	items := NewItemStore(d)
	ctx := context.Background()

	item, err := items.Create(ctx, domain.ItemFields{CategoryID: tops.ID, PictureData: pngHeader})
	require.NoError(t, err)

	require.NoError(t, items.Delete(ctx, item.ID))

	deleted, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	// A second delete of the same id is an error, not a silent success.
	assert.ErrorIs(t, items.Delete(ctx, item.ID), apperrors.ErrItemNotFound)
}

func TestItemStoreDelete_NotFound(t *testing.T) {
	items := NewItemStore(openTestDB(t))

	err := items.Delete(context.Background(), "no-such-item")
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
}
