package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
	"github.com/wardrobeassistant/wardrobe/internal/db"
	"github.com/wardrobeassistant/wardrobe/internal/domain"
	"github.com/wardrobeassistant/wardrobe/internal/events"
	"github.com/wardrobeassistant/wardrobe/internal/store"
)

var pngPicture = []byte("\x89PNG\r\n\x1a\n-fake-image-body")

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func newTestService(t *testing.T) (*CatalogService, *events.Broker) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	logger := zaptest.NewLogger(t)
	broker := events.NewBroker(logger)
	svc := NewCatalogService(store.NewCategoryStore(d), store.NewItemStore(d), broker, logger)
	return svc, broker
}

func mustCategory(t *testing.T, svc *CatalogService, name string, order int) *domain.Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: name, DisplayOrder: order})
	require.NoError(t, err)
	return c
}

func mustItem(t *testing.T, svc *CatalogService, categoryID string) *domain.Item {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), CreateItemInput{CategoryID: categoryID, PictureData: pngPicture})
	require.NoError(t, err)
	return item
}

func receive(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestCatalogServiceTopsScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tops := mustCategory(t, svc, "Tops", 1)
	_, err := svc.CreateItem(ctx, CreateItemInput{
		CategoryID:  tops.ID,
		PictureData: pngPicture,
		Name:        strPtr("T-Shirt"),
		Price:       intPtr(2000),
	})
	require.NoError(t, err)

	items, err := svc.ListItems(ctx, tops.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "T-Shirt", *items[0].Name)
	assert.Equal(t, 2000, *items[0].Price)
	assert.Nil(t, items[0].IsFavorite)

	require.NoError(t, svc.DeleteCategory(ctx, tops.ID))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		assert.NotEqual(t, tops.ID, c.ID)
	}

	items, err = svc.ListItems(ctx, tops.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogServiceListCategoriesSortsByDisplayOrder(t *testing.T) {
	svc, _ := newTestService(t)

	for _, tc := range []struct {
		name  string
		order int
	}{
		{"Shoes", 5}, {"Other", 7}, {"Innerwear", 1}, {"Bottoms", 4}, {"Tops", 2},
	} {
		mustCategory(t, svc, tc.name, tc.order)
	}

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	for i := 1; i < len(categories); i++ {
		assert.LessOrEqual(t, categories[i-1].DisplayOrder, categories[i].DisplayOrder)
	}
	assert.Equal(t, "Innerwear", categories[0].Name)
	assert.Equal(t, "Other", categories[len(categories)-1].Name)
}

func TestCatalogServiceCreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", apperrors.ErrCategoryNameRequired},
		{"whitespace only", "   \t", apperrors.ErrCategoryNameRequired},
		{"too long", strings.Repeat("x", maxCategoryNameLen+1), apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: tt.input})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			categories, err := svc.ListCategories(context.Background())
			require.NoError(t, err)
			assert.Empty(t, categories)
		})
	}
}

func TestCatalogServiceCreateCategoryTrimsName(t *testing.T) {
	svc, _ := newTestService(t)

	c := mustCategory(t, svc, "  Hats  ", 3)
	assert.Equal(t, "Hats", c.Name)
}

func TestCatalogServiceCreateItem_EmptyPicturePersistsNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)

	for _, picture := range [][]byte{nil, {}} {
		item, err := svc.CreateItem(ctx, CreateItemInput{CategoryID: tops.ID, PictureData: picture, Name: strPtr("Ghost")})
		assert.ErrorIs(t, err, apperrors.ErrPictureRequired)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Nil(t, item)
	}

	count, err := svc.CountItems(ctx, tops.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCatalogServiceCreateItem_UnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateItem(context.Background(), CreateItemInput{CategoryID: "missing", PictureData: pngPicture})
	assert.ErrorIs(t, err, apperrors.ErrUnknownCategory)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateItem(context.Background(), CreateItemInput{PictureData: pngPicture})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCatalogServiceDeleteItem_NotFoundLeavesStoreUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)
	kept := mustItem(t, svc, tops.ID)

	err := svc.DeleteItem(ctx, "no-such-item")
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	items, err := svc.ListItems(ctx, tops.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ID)
}

func TestCatalogServiceDeleteItemTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := mustItem(t, svc, mustCategory(t, svc, "Tops", 1).ID)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID), apperrors.ErrItemNotFound)

	_, err := svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
}

func TestCatalogServiceDeleteCategoryCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)
	shoes := mustCategory(t, svc, "Shoes", 2)

	var doomed []*domain.Item
	for i := 0; i < 3; i++ {
		doomed = append(doomed, mustItem(t, svc, tops.ID))
	}
	survivor := mustItem(t, svc, shoes.ID)

	require.NoError(t, svc.DeleteCategory(ctx, tops.ID))

	for _, item := range doomed {
		_, err := svc.GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
	}
	_, err := svc.GetItem(ctx, survivor.ID)
	assert.NoError(t, err)

	_, _, err = svc.GetCategoryWithItems(ctx, tops.ID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, tops.ID), apperrors.ErrCategoryNotFound)
}

func TestCatalogServiceSeedDefaultCategoriesTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seeded, err := svc.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = svc.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 7)
}

func TestCatalogServiceSeedConcurrently(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SeedDefaultCategories(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(domain.DefaultCategories))
}

func TestCatalogServiceUpdateItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)
	outer := mustCategory(t, svc, "Outerwear", 2)

	item, err := svc.CreateItem(ctx, CreateItemInput{
		CategoryID:  tops.ID,
		PictureData: pngPicture,
		Name:        strPtr("Hoodie"),
		Price:       intPtr(3500),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, item.ID, UpdateItemInput{
		CategoryID: outer.ID,
		Name:       strPtr("Zip Hoodie"),
		IsFavorite: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, outer.ID, updated.CategoryID)
	assert.Equal(t, "Zip Hoodie", *updated.Name)
	assert.True(t, *updated.IsFavorite)
	assert.Nil(t, updated.Price)
	assert.Equal(t, pngPicture, updated.PictureData)

	moved, err := svc.ListItems(ctx, outer.ID)
	require.NoError(t, err)
	assert.Len(t, moved, 1)
}

func TestCatalogServiceUpdateItem_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)
	item := mustItem(t, svc, tops.ID)

	_, err := svc.UpdateItem(ctx, "no-such-item", UpdateItemInput{CategoryID: tops.ID})
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)

	_, err = svc.UpdateItem(ctx, item.ID, UpdateItemInput{CategoryID: "gone"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownCategory)

	_, err = svc.UpdateItem(ctx, item.ID, UpdateItemInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCatalogServiceUpdateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)

	updated, err := svc.UpdateCategory(ctx, tops.ID, UpdateCategoryInput{Name: "Shirts", DisplayOrder: 4})
	require.NoError(t, err)
	assert.Equal(t, "Shirts", updated.Name)
	assert.Equal(t, 4, updated.DisplayOrder)

	_, err = svc.UpdateCategory(ctx, "missing", UpdateCategoryInput{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	_, err = svc.UpdateCategory(ctx, tops.ID, UpdateCategoryInput{Name: " "})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNameRequired)
}

func TestCatalogServiceListCategorySummaries(t *testing.T) {
	svc, _ := newTestService(t)
	tops := mustCategory(t, svc, "Tops", 1)
	mustCategory(t, svc, "Shoes", 2)
	mustItem(t, svc, tops.ID)
	mustItem(t, svc, tops.ID)

	summaries, err := svc.ListCategorySummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Tops", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].ItemCount)
	assert.Equal(t, 0, summaries[1].ItemCount)
}

// deleteAfterSummaries runs a cascade delete as soon as the summary read
// returns, before the caller sees the result.
type deleteAfterSummaries struct {
	*store.CategoryStore
	after func()
}

func (r *deleteAfterSummaries) ListWithCounts(ctx context.Context) ([]*domain.CategorySummary, error) {
	summaries, err := r.CategoryStore.ListWithCounts(ctx)
	r.after()
	return summaries, err
}

func TestCatalogServiceListCategorySummaries_ConcurrentCascade(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	logger := zaptest.NewLogger(t)
	repo := &deleteAfterSummaries{CategoryStore: store.NewCategoryStore(d)}
	svc := NewCatalogService(repo, store.NewItemStore(d), events.NewBroker(logger), logger)
	ctx := context.Background()

	tops := mustCategory(t, svc, "Tops", 1)
	mustItem(t, svc, tops.ID)
	mustItem(t, svc, tops.ID)
	repo.after = func() { require.NoError(t, svc.DeleteCategory(ctx, tops.ID)) }

	summaries, err := svc.ListCategorySummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, tops.ID, summaries[0].ID)
	assert.Equal(t, 2, summaries[0].ItemCount, "count must come from the same read as the category")

	repo.after = func() {}
	summaries, err = svc.ListCategorySummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestCatalogServiceGetCategorySummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tops := mustCategory(t, svc, "Tops", 1)
	mustItem(t, svc, tops.ID)

	summary, err := svc.GetCategorySummary(ctx, tops.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tops", summary.Name)
	assert.Equal(t, 1, summary.ItemCount)

	require.NoError(t, svc.DeleteCategory(ctx, tops.ID))
	_, err = svc.GetCategorySummary(ctx, tops.ID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestCatalogServiceGetCategoryWithItems(t *testing.T) {
	svc, _ := newTestService(t)
	tops := mustCategory(t, svc, "Tops", 1)
	first := mustItem(t, svc, tops.ID)
	second := mustItem(t, svc, tops.ID)

	category, items, err := svc.GetCategoryWithItems(context.Background(), tops.ID)
	require.NoError(t, err)
	assert.Equal(t, tops.ID, category.ID)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestCatalogServicePublishesAfterCommit(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	feed, cancel := broker.Subscribe()
	defer cancel()

	tops := mustCategory(t, svc, "Tops", 1)
	ev := receive(t, feed)
	assert.Equal(t, events.CategoryCreated, ev.Type)
	assert.Equal(t, tops.ID, ev.CategoryID)

	item := mustItem(t, svc, tops.ID)
	ev = receive(t, feed)
	assert.Equal(t, events.ItemCreated, ev.Type)
	assert.Equal(t, item.ID, ev.ItemID)

	// The subscriber re-reads and must already see the committed item.
	items, err := svc.ListItems(ctx, ev.CategoryID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.DeleteCategory(ctx, tops.ID))
	ev = receive(t, feed)
	assert.Equal(t, events.CategoryDeleted, ev.Type)

	// Failed mutations publish nothing.
	assert.Error(t, svc.DeleteItem(ctx, item.ID))
	select {
	case ev := <-feed:
		t.Fatalf("unexpected event %s", ev.Type)
	default:
	}
}
