package groceries

import (
	"context"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for grocery lists.
type Repository interface {
	Create(ctx context.Context, item *models.GroceryItem) error
	DeleteByName(ctx context.Context, username, name string) (int64, error)
	ListPage(ctx context.Context, username string, cursor *pagination.Cursor, limit int) ([]models.GroceryItem, *pagination.Cursor, error)
	ListAll(ctx context.Context, username string) ([]models.GroceryItem, error)
	FirstByName(ctx context.Context, username, name string) (*models.GroceryItem, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a groceries repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.GroceryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// DeleteByName removes every row whose name matches exactly and reports how
// many were removed. Zero is not an error.
func (r *repositoryImpl) DeleteByName(ctx context.Context, username, name string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("username = ? AND name = ?", username, name).
		Delete(&models.GroceryItem{})
	return result.RowsAffected, result.Error
}

// ListPage returns newest-first pages for the HTTP list endpoint.
func (r *repositoryImpl) ListPage(ctx context.Context, username string, cursor *pagination.Cursor, limit int) ([]models.GroceryItem, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).
		Model(&models.GroceryItem{}).
		Where("username = ?", username)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var items []models.GroceryItem
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > normalized {
		items = items[:normalized]
		// Cursor carries the last returned row; the page filter is strictly
		// exclusive, so the next page resumes right after it.
		last := items[normalized-1]
		return items, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return items, nil, nil
}

// ListAll returns the user's full list in insertion order. The matcher walks
// this to preserve duplicate entries and their relative order.
func (r *repositoryImpl) ListAll(ctx context.Context, username string) ([]models.GroceryItem, error) {
	var items []models.GroceryItem
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

// FirstByName returns the user's earliest row with the exact name, or
// gorm.ErrRecordNotFound.
func (r *repositoryImpl) FirstByName(ctx context.Context, username, name string) (*models.GroceryItem, error) {
	var item models.GroceryItem
	err := r.db.WithContext(ctx).
		Where("username = ? AND name = ?", username, name).
		Order("created_at ASC, id ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
