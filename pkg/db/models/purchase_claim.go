package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseClaim tracks who is buying an item for an unordered pair of users
// and, once settled, how the cost was divided. The pair is stored in
// lexicographic order (UserLow < UserHigh) so the unique index holds
// regardless of which side initiated the claim. Claims reference usernames
// directly and outlive both grocery rows and friendships.
type PurchaseClaim struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Item       string     `gorm:"column:item;type:text;not null;uniqueIndex:purchase_claims_item_pair_key,priority:1"`
	UserLow    string     `gorm:"column:user_low;type:text;not null;uniqueIndex:purchase_claims_item_pair_key,priority:2"`
	UserHigh   string     `gorm:"column:user_high;type:text;not null;uniqueIndex:purchase_claims_item_pair_key,priority:3"`
	Buyer      string     `gorm:"column:buyer;type:text;not null"`
	Settled    bool       `gorm:"column:settled;not null;default:false"`
	TotalPrice *float64   `gorm:"column:total_price;type:numeric"`
	LowShare   *float64   `gorm:"column:low_share;type:numeric"`
	HighShare  *float64   `gorm:"column:high_share;type:numeric"`
	SettledAt  *time.Time `gorm:"column:settled_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Involves reports whether the username is one side of the claim pair.
func (p PurchaseClaim) Involves(username string) bool {
	return p.UserLow == username || p.UserHigh == username
}

// Partner returns the other side of the pair for the given username.
func (p PurchaseClaim) Partner(username string) string {
	if p.UserLow == username {
		return p.UserHigh
	}
	return p.UserLow
}

// ShareFor returns the settled share owed by the given username, if any.
func (p PurchaseClaim) ShareFor(username string) *float64 {
	switch username {
	case p.UserLow:
		return p.LowShare
	case p.UserHigh:
		return p.HighShare
	default:
		return nil
	}
}
