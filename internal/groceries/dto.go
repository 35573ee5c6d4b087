package groceries

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	"github.com/angelmondragon/groceryshare-backend/pkg/enums"
)

// GroceryItemDTO is the transport shape for one grocery list entry.
type GroceryItemDTO struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Quantity  float64           `json:"quantity"`
	Unit      enums.GroceryUnit `json:"unit"`
	CreatedAt time.Time         `json:"created_at"`
}

// ListResult wraps a page of items and the cursor for the next page.
type ListResult struct {
	Items  []GroceryItemDTO `json:"items"`
	Cursor string           `json:"cursor"`
}

// AddItemParams carries the fields needed to append a list entry.
type AddItemParams struct {
	Username string
	Name     string
	Quantity float64
	Unit     string
}

func fromModel(item models.GroceryItem) GroceryItemDTO {
	return GroceryItemDTO{
		ID:        item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		CreatedAt: item.CreatedAt,
	}
}
