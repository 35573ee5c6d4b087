package friends

import (
	"context"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for the friendship ledger.
type Repository interface {
	CreatePair(ctx context.Context, username, friend string) error
	DeletePair(ctx context.Context, username, friend string) (int64, error)
	List(ctx context.Context, username string) ([]models.Friendship, error)
	Exists(ctx context.Context, username, friend string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a friends repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// CreatePair inserts both directions of the friendship in one transaction.
// Either both rows land or neither does; a duplicate on either side fails
// the whole insert with a unique violation.
func (r *repositoryImpl) CreatePair(ctx context.Context, username, friend string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := []models.Friendship{
			{Username: username, FriendUsername: friend},
			{Username: friend, FriendUsername: username},
		}
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePair removes both directions atomically and reports rows removed.
func (r *repositoryImpl) DeletePair(ctx context.Context, username, friend string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("(username = ? AND friend_username = ?) OR (username = ? AND friend_username = ?)",
			username, friend, friend, username).
		Delete(&models.Friendship{})
	return result.RowsAffected, result.Error
}

// List returns the caller's outgoing rows in creation order.
func (r *repositoryImpl) List(ctx context.Context, username string) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at ASC, friend_username ASC").
		Find(&rows).Error
	return rows, err
}

// Exists reports whether the caller has an outgoing row to friend. The
// ledger is symmetric, so one direction answers for both.
func (r *repositoryImpl) Exists(ctx context.Context, username, friend string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("username = ? AND friend_username = ?", username, friend).
		Count(&count).Error
	return count > 0, err
}
