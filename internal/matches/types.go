package matches

import "github.com/angelmondragon/groceryshare-backend/pkg/enums"

// MatchDTO is one overlap between a user's grocery row and a friend's list.
// Quantities come from each side's own rows; the unit is always the user's.
type MatchDTO struct {
	Item           string            `json:"item"`
	MyQuantity     float64           `json:"my_quantity"`
	FriendQuantity float64           `json:"friend_quantity"`
	Unit           enums.GroceryUnit `json:"unit"`
}
