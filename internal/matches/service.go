package matches

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
)

// Service computes grocery list overlaps between friends. Matches are derived
// on every call and never persisted.
type Service interface {
	Find(ctx context.Context, username string) (map[string][]MatchDTO, error)
	FindWith(ctx context.Context, username, friend string) ([]MatchDTO, error)
}

type friendshipSource interface {
	List(ctx context.Context, username string) ([]models.Friendship, error)
	Exists(ctx context.Context, username, friend string) (bool, error)
}

type grocerySource interface {
	ListAll(ctx context.Context, username string) ([]models.GroceryItem, error)
	FirstByName(ctx context.Context, username, name string) (*models.GroceryItem, error)
}

type service struct {
	friends   friendshipSource
	groceries grocerySource
}

// ServiceParams bundles the dependencies required to build a matcher service.
type ServiceParams struct {
	Friends   friendshipSource
	Groceries grocerySource
}

// NewService wires the matcher dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Friends == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "friends repository required")
	}
	if params.Groceries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "groceries repository required")
	}
	return &service{friends: params.Friends, groceries: params.Groceries}, nil
}

// Find walks every friend and every row on the user's list. Names compare
// byte-for-byte, so "Milk" and "milk" never match. Friends with no overlap
// are absent from the map entirely.
func (s *service) Find(ctx context.Context, username string) (map[string][]MatchDTO, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}

	friendships, err := s.friends.List(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list friends")
	}
	myItems, err := s.groceries.ListAll(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grocery items")
	}

	result := make(map[string][]MatchDTO)
	for _, friendship := range friendships {
		overlap, err := s.matchAgainst(ctx, myItems, friendship.FriendUsername)
		if err != nil {
			return nil, err
		}
		if len(overlap) > 0 {
			result[friendship.FriendUsername] = overlap
		}
	}
	return result, nil
}

// FindWith restricts the match to one pair. A pair that is not befriended
// yields an empty result rather than an error.
func (s *service) FindWith(ctx context.Context, username, friend string) ([]MatchDTO, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(friend) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}

	befriended, err := s.friends.Exists(ctx, username, friend)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check friendship")
	}
	if !befriended {
		return []MatchDTO{}, nil
	}

	myItems, err := s.groceries.ListAll(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grocery items")
	}
	return s.matchAgainst(ctx, myItems, friend)
}

// matchAgainst emits one match per user row, so duplicate names on the
// user's list produce duplicate matches. The friend's side always uses their
// earliest row with that name.
func (s *service) matchAgainst(ctx context.Context, myItems []models.GroceryItem, friend string) ([]MatchDTO, error) {
	matches := make([]MatchDTO, 0)
	for _, mine := range myItems {
		theirs, err := s.groceries.FirstByName(ctx, friend, mine.Name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup friend item")
		}
		matches = append(matches, MatchDTO{
			Item:           mine.Name,
			MyQuantity:     mine.Quantity,
			FriendQuantity: theirs.Quantity,
			Unit:           mine.Unit,
		})
	}
	return matches, nil
}
