package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/groceryshare-backend/pkg/enums"
)

// GroceryItem is one entry on a user's grocery list. Entries are append-only
// from the store's point of view: adding the same name twice keeps two rows.
// Item names are matched byte-for-byte, so "Apples" and "apples" are
// unrelated entries.
type GroceryItem struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Username  string            `gorm:"column:username;type:text;not null;index:grocery_items_username_name_idx,priority:1"`
	Name      string            `gorm:"column:name;type:text;not null;index:grocery_items_username_name_idx,priority:2"`
	Quantity  float64           `gorm:"column:quantity;type:numeric;not null"`
	Unit      enums.GroceryUnit `gorm:"column:unit;type:text;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
