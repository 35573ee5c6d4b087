package purchases

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
)

// Repository exposes persistence helpers for purchase claims. State
// transitions are expressed as guarded single-statement updates so the
// settled flag and the share columns can never be observed half-written.
type Repository interface {
	Create(ctx context.Context, claim *models.PurchaseClaim) error
	Find(ctx context.Context, item, userLow, userHigh string) (*models.PurchaseClaim, error)
	ReassignBuyer(ctx context.Context, item, userLow, userHigh, buyer string) (int64, error)
	Settle(ctx context.Context, item, userLow, userHigh string, total, lowShare, highShare float64, at time.Time) (int64, error)
	OngoingFor(ctx context.Context, username string) ([]models.PurchaseClaim, error)
	ClaimedBy(ctx context.Context, username string) ([]string, error)
	HistoryFor(ctx context.Context, username string, cursor *pagination.Cursor, limit int) ([]models.PurchaseClaim, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a purchases repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, claim *models.PurchaseClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *repositoryImpl) Find(ctx context.Context, item, userLow, userHigh string) (*models.PurchaseClaim, error) {
	var claim models.PurchaseClaim
	err := r.db.WithContext(ctx).
		Where("item = ? AND user_low = ? AND user_high = ?", item, userLow, userHigh).
		First(&claim).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// ReassignBuyer moves the buyer on an unsettled claim and clears any stale
// price and shares in the same statement. Zero rows affected means the claim
// is missing or already settled.
func (r *repositoryImpl) ReassignBuyer(ctx context.Context, item, userLow, userHigh, buyer string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseClaim{}).
		Where("item = ? AND user_low = ? AND user_high = ? AND settled = ?", item, userLow, userHigh, false).
		Updates(map[string]interface{}{
			"buyer":       buyer,
			"total_price": nil,
			"low_share":   nil,
			"high_share":  nil,
		})
	return result.RowsAffected, result.Error
}

// Settle flips an unsettled claim to settled and fixes the shares in one
// statement. Zero rows affected means the claim is missing or already
// settled; the caller distinguishes the two.
func (r *repositoryImpl) Settle(ctx context.Context, item, userLow, userHigh string, total, lowShare, highShare float64, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseClaim{}).
		Where("item = ? AND user_low = ? AND user_high = ? AND settled = ?", item, userLow, userHigh, false).
		Updates(map[string]interface{}{
			"settled":     true,
			"total_price": total,
			"low_share":   lowShare,
			"high_share":  highShare,
			"settled_at":  at,
		})
	return result.RowsAffected, result.Error
}

// OngoingFor lists unsettled claims where someone else is buying for the
// given user.
func (r *repositoryImpl) OngoingFor(ctx context.Context, username string) ([]models.PurchaseClaim, error) {
	var claims []models.PurchaseClaim
	err := r.db.WithContext(ctx).
		Where("(user_low = ? OR user_high = ?) AND buyer <> ? AND settled = ?", username, username, username, false).
		Order("created_at ASC, id ASC").
		Find(&claims).Error
	return claims, err
}

// ClaimedBy returns the distinct item names the user is currently buying.
// The result is never nil so the endpoint renders an empty array.
func (r *repositoryImpl) ClaimedBy(ctx context.Context, username string) ([]string, error) {
	items := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseClaim{}).
		Distinct("item").
		Where("buyer = ? AND settled = ?", username, false).
		Order("item ASC").
		Pluck("item", &items).Error
	return items, err
}

// HistoryFor returns settled claims involving the user, newest first.
func (r *repositoryImpl) HistoryFor(ctx context.Context, username string, cursor *pagination.Cursor, limit int) ([]models.PurchaseClaim, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).
		Model(&models.PurchaseClaim{}).
		Where("(user_low = ? OR user_high = ?) AND settled = ?", username, username, true)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var claims []models.PurchaseClaim
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&claims).Error; err != nil {
		return nil, nil, err
	}

	if len(claims) > normalized {
		claims = claims[:normalized]
		// Cursor carries the last returned row; the page filter is strictly
		// exclusive, so the next page resumes right after it.
		last := claims[normalized-1]
		return claims, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return claims, nil, nil
}
