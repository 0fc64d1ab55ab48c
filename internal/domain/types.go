package domain

import "time"

// Category groups items for browsing. Its items are never stored on the
// struct; they are read through the item store by category id.
type Category struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CategorySummary is a category together with its item count, both read in
// one statement.
type CategorySummary struct {
	Category
	ItemCount int `db:"item_count" json:"item_count"`
}

// Item is a single catalogued piece of clothing. Name, IsFavorite and Price
// are nil when the user never set them.
type Item struct {
	ID          string    `db:"id" json:"id"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	PictureData []byte    `db:"picture_data" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Name        *string   `db:"name" json:"name"`
	IsFavorite  *bool     `db:"is_favorite" json:"is_favorite"`
	Price       *int      `db:"price" json:"price"`
}

// ItemFields are the user-editable attributes of an item. A nil pointer
// stores NULL. On update, empty PictureData keeps the current picture.
type ItemFields struct {
	CategoryID  string
	PictureData []byte
	Name        *string
	IsFavorite  *bool
	Price       *int
}

// DefaultCategories are seeded, in display order, into an empty catalog.
var DefaultCategories = []string{
	"Innerwear",
	"Tops",
	"Outerwear",
	"Bottoms",
	"Shoes",
	"Accessories",
	"Other",
}
