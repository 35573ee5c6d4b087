package purchases

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
)

// ClaimDTO is the transport shape of a purchase claim as seen by one of the
// two participants. Partner and YourShare are relative to the viewer.
type ClaimDTO struct {
	ID         uuid.UUID  `json:"id"`
	Item       string     `json:"item"`
	Partner    string     `json:"partner"`
	Buyer      string     `json:"buyer"`
	Settled    bool       `json:"settled"`
	TotalPrice *float64   `json:"total_price,omitempty"`
	YourShare  *float64   `json:"your_share,omitempty"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SplitPreviewDTO shows how a total would divide before anything is settled.
type SplitPreviewDTO struct {
	TotalPrice float64 `json:"total_price"`
	YourShare  float64 `json:"your_share"`
	TheirShare float64 `json:"their_share"`
}

// HistoryResult wraps a page of settled claims and the next-page cursor.
type HistoryResult struct {
	Claims []ClaimDTO `json:"claims"`
	Cursor string     `json:"cursor"`
}

// ClaimParams carries the inputs for claiming a purchase.
type ClaimParams struct {
	Actor  string
	Friend string
	Item   string
	Buyer  string
}

// SettleParams carries the inputs for settling a claimed purchase.
type SettleParams struct {
	Actor      string
	Friend     string
	Item       string
	TotalPrice float64
}

func claimForViewer(claim models.PurchaseClaim, viewer string) ClaimDTO {
	return ClaimDTO{
		ID:         claim.ID,
		Item:       claim.Item,
		Partner:    claim.Partner(viewer),
		Buyer:      claim.Buyer,
		Settled:    claim.Settled,
		TotalPrice: claim.TotalPrice,
		YourShare:  claim.ShareFor(viewer),
		SettledAt:  claim.SettledAt,
		CreatedAt:  claim.CreatedAt,
	}
}
