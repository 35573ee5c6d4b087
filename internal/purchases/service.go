package purchases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/groceryshare-backend/pkg/db"
	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
)

// Service tracks who buys what for whom. A claim key is the item name plus
// the unordered user pair; each key moves Unclaimed -> Claimed -> Settled,
// and settling is terminal.
type Service interface {
	Claim(ctx context.Context, params ClaimParams) (*ClaimDTO, error)
	Settle(ctx context.Context, params SettleParams) (*ClaimDTO, error)
	Preview(ctx context.Context, totalPrice float64) (*SplitPreviewDTO, error)
	OngoingFor(ctx context.Context, username string) ([]ClaimDTO, error)
	ClaimedBy(ctx context.Context, username string) ([]string, error)
	HistoryFor(ctx context.Context, username string, page pagination.Params) (*HistoryResult, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a purchases
// service. Now is optional and defaults to time.Now.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

// NewService wires the purchase tracker dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "purchases repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

// Claim creates the record for (item, pair) or reassigns the buyer on an
// unsettled one. Reassignment clears any price and shares left by an earlier
// settle attempt. Claiming with the same buyer again is a harmless rewrite.
func (s *service) Claim(ctx context.Context, params ClaimParams) (*ClaimDTO, error) {
	if err := validateParticipants(params.Actor, params.Friend); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Item) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item required")
	}
	if params.Buyer != params.Actor && params.Buyer != params.Friend {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer must be one of the pair")
	}
	userLow, userHigh := canonicalPair(params.Actor, params.Friend)

	rows, err := s.repo.ReassignBuyer(ctx, params.Item, userLow, userHigh, params.Buyer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign buyer")
	}
	if rows == 0 {
		created, err := s.createClaim(ctx, params, userLow, userHigh)
		if err != nil {
			return nil, err
		}
		if !created {
			// Lost the insert race; the winner's row is unsettled, so the
			// reassign must land now unless it settled in between.
			rows, err = s.repo.ReassignBuyer(ctx, params.Item, userLow, userHigh, params.Buyer)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign buyer")
			}
			if rows == 0 {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already settled")
			}
		}
	}

	claim, err := s.repo.Find(ctx, params.Item, userLow, userHigh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
	}
	dto := claimForViewer(*claim, params.Actor)
	return &dto, nil
}

// createClaim inserts a fresh claim unless the record already exists. It
// reports whether the insert happened: false means either the record is
// settled (surfaced as a state conflict) or another writer inserted first.
func (s *service) createClaim(ctx context.Context, params ClaimParams, userLow, userHigh string) (bool, error) {
	existing, err := s.repo.Find(ctx, params.Item, userLow, userHigh)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
	}
	if existing != nil {
		if existing.Settled {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already settled")
		}
		return false, nil
	}

	claim := models.PurchaseClaim{
		ID:       uuid.New(),
		Item:     params.Item,
		UserLow:  userLow,
		UserHigh: userHigh,
		Buyer:    params.Buyer,
	}
	if err := s.repo.Create(ctx, &claim); err != nil {
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create claim")
	}
	return true, nil
}

// Settle fixes the shares and flips the claim to settled in one guarded
// update. Settling is not idempotent: a second call fails because the record
// is no longer unsettled.
func (s *service) Settle(ctx context.Context, params SettleParams) (*ClaimDTO, error) {
	if err := validateParticipants(params.Actor, params.Friend); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Item) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item required")
	}
	lowShare, highShare, err := SplitEqual(params.TotalPrice)
	if err != nil {
		return nil, err
	}
	userLow, userHigh := canonicalPair(params.Actor, params.Friend)

	rows, err := s.repo.Settle(ctx, params.Item, userLow, userHigh, params.TotalPrice, lowShare, highShare, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle claim")
	}
	if rows == 0 {
		_, err := s.repo.Find(ctx, params.Item, userLow, userHigh)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already settled")
	}

	claim, err := s.repo.Find(ctx, params.Item, userLow, userHigh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
	}
	dto := claimForViewer(*claim, params.Actor)
	return &dto, nil
}

// Preview runs the same share math a settle would persist.
func (s *service) Preview(ctx context.Context, totalPrice float64) (*SplitPreviewDTO, error) {
	yours, theirs, err := SplitEqual(totalPrice)
	if err != nil {
		return nil, err
	}
	return &SplitPreviewDTO{TotalPrice: totalPrice, YourShare: yours, TheirShare: theirs}, nil
}

// OngoingFor lists unsettled claims where a friend is buying for the user.
func (s *service) OngoingFor(ctx context.Context, username string) ([]ClaimDTO, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	claims, err := s.repo.OngoingFor(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ongoing claims")
	}
	out := make([]ClaimDTO, 0, len(claims))
	for _, claim := range claims {
		out = append(out, claimForViewer(claim, username))
	}
	return out, nil
}

// ClaimedBy returns the item names the user is currently buying, for
// disabling duplicate claim actions in the UI.
func (s *service) ClaimedBy(ctx context.Context, username string) ([]string, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	items, err := s.repo.ClaimedBy(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list claimed items")
	}
	return items, nil
}

func (s *service) HistoryFor(ctx context.Context, username string, page pagination.Params) (*HistoryResult, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	claims, next, err := s.repo.HistoryFor(ctx, username, cursor, page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlement history")
	}

	result := HistoryResult{Claims: make([]ClaimDTO, 0, len(claims))}
	for _, claim := range claims {
		result.Claims = append(result.Claims, claimForViewer(claim, username))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return &result, nil
}

func validateParticipants(actor, friend string) error {
	if strings.TrimSpace(actor) == "" || strings.TrimSpace(friend) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if actor == friend {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot split a purchase with yourself")
	}
	return nil
}

func canonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
