package friends

import "time"

// FriendDTO is one active friendship from the caller's point of view.
type FriendDTO struct {
	Username string    `json:"username"`
	Since    time.Time `json:"since"`
}
