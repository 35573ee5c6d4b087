package models

import "time"

// Friendship is one direction of a mutual relationship. A friendship between
// A and B is stored as two rows, (A,B) and (B,A), written and removed in the
// same transaction so the table never holds a dangling half.
type Friendship struct {
	Username       string    `gorm:"column:username;type:text;primaryKey"`
	FriendUsername string    `gorm:"column:friend_username;type:text;primaryKey"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
