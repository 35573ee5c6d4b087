package purchases

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
)

type claimKey struct {
	item     string
	userLow  string
	userHigh string
}

type fakeRepository struct {
	claims map[claimKey]*models.PurchaseClaim
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{claims: make(map[claimKey]*models.PurchaseClaim)}
}

func (f *fakeRepository) Create(ctx context.Context, claim *models.PurchaseClaim) error {
	key := claimKey{claim.Item, claim.UserLow, claim.UserHigh}
	if _, ok := f.claims[key]; ok {
		return errors.New("UNIQUE constraint failed: purchase_claims.item, purchase_claims.user_low, purchase_claims.user_high")
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now().UTC()
	}
	stored := *claim
	f.claims[key] = &stored
	return nil
}

func (f *fakeRepository) Find(ctx context.Context, item, userLow, userHigh string) (*models.PurchaseClaim, error) {
	claim, ok := f.claims[claimKey{item, userLow, userHigh}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *claim
	return &found, nil
}

func (f *fakeRepository) ReassignBuyer(ctx context.Context, item, userLow, userHigh, buyer string) (int64, error) {
	claim, ok := f.claims[claimKey{item, userLow, userHigh}]
	if !ok || claim.Settled {
		return 0, nil
	}
	claim.Buyer = buyer
	claim.TotalPrice = nil
	claim.LowShare = nil
	claim.HighShare = nil
	return 1, nil
}

func (f *fakeRepository) Settle(ctx context.Context, item, userLow, userHigh string, total, lowShare, highShare float64, at time.Time) (int64, error) {
	claim, ok := f.claims[claimKey{item, userLow, userHigh}]
	if !ok || claim.Settled {
		return 0, nil
	}
	claim.Settled = true
	claim.TotalPrice = &total
	claim.LowShare = &lowShare
	claim.HighShare = &highShare
	claim.SettledAt = &at
	return 1, nil
}

func (f *fakeRepository) OngoingFor(ctx context.Context, username string) ([]models.PurchaseClaim, error) {
	var out []models.PurchaseClaim
	for _, claim := range f.claims {
		if claim.Involves(username) && claim.Buyer != username && !claim.Settled {
			out = append(out, *claim)
		}
	}
	return out, nil
}

func (f *fakeRepository) ClaimedBy(ctx context.Context, username string) ([]string, error) {
	seen := make(map[string]bool)
	var items []string
	for _, claim := range f.claims {
		if claim.Buyer == username && !claim.Settled && !seen[claim.Item] {
			seen[claim.Item] = true
			items = append(items, claim.Item)
		}
	}
	return items, nil
}

func (f *fakeRepository) HistoryFor(ctx context.Context, username string, cursor *pagination.Cursor, limit int) ([]models.PurchaseClaim, *pagination.Cursor, error) {
	var out []models.PurchaseClaim
	for _, claim := range f.claims {
		if claim.Involves(username) && claim.Settled {
			out = append(out, *claim)
		}
	}
	return out, nil, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(ServiceParams{Repo: repo, Now: func() time.Time {
		return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	}})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func TestClaimCreatesRecordWithCanonicalPair(t *testing.T) {
	svc, repo := newTestService(t)

	dto, err := svc.Claim(context.Background(), ClaimParams{Actor: "bob", Friend: "alice", Item: "milk", Buyer: "bob"})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if dto.Buyer != "bob" || dto.Partner != "alice" || dto.Settled {
		t.Fatalf("unexpected claim %+v", dto)
	}

	// Stored under (alice, bob) no matter which side initiated.
	if _, ok := repo.claims[claimKey{"milk", "alice", "bob"}]; !ok {
		t.Fatal("claim not stored under canonical pair order")
	}
}

func TestClaimValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params ClaimParams
	}{
		{"self pair", ClaimParams{Actor: "alice", Friend: "alice", Item: "milk", Buyer: "alice"}},
		{"empty item", ClaimParams{Actor: "alice", Friend: "bob", Item: " ", Buyer: "alice"}},
		{"outside buyer", ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "carol"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Claim(ctx, tc.params)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestClaimSameBuyerIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	params := ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}

	if _, err := svc.Claim(ctx, params); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	dto, err := svc.Claim(ctx, params)
	if err != nil {
		t.Fatalf("repeat claim must succeed, got %v", err)
	}
	if dto.Buyer != "alice" {
		t.Fatalf("buyer changed unexpectedly: %+v", dto)
	}
}

func TestClaimReassignsBuyerOnUnsettledRecord(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	price := 9.99
	repo.claims[claimKey{"milk", "alice", "bob"}].TotalPrice = &price

	dto, err := svc.Claim(ctx, ClaimParams{Actor: "bob", Friend: "alice", Item: "milk", Buyer: "bob"})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if dto.Buyer != "bob" {
		t.Fatalf("expected buyer bob, got %s", dto.Buyer)
	}
	if dto.TotalPrice != nil {
		t.Fatal("stale price must be cleared on reassignment")
	}
}

func TestClaimSettledRecordIsStateConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Settle(ctx, SettleParams{Actor: "alice", Friend: "bob", Item: "milk", TotalPrice: 10}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	_, err := svc.Claim(ctx, ClaimParams{Actor: "bob", Friend: "alice", Item: "milk", Buyer: "bob"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSettleFixesEqualShares(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	dto, err := svc.Settle(ctx, SettleParams{Actor: "alice", Friend: "bob", Item: "milk", TotalPrice: 7.3})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !dto.Settled || dto.SettledAt == nil {
		t.Fatalf("claim not settled: %+v", dto)
	}
	if dto.TotalPrice == nil || *dto.TotalPrice != 7.3 {
		t.Fatalf("unexpected total %+v", dto.TotalPrice)
	}
	if dto.YourShare == nil {
		t.Fatal("viewer share missing")
	}
	if diff := math.Abs(*dto.YourShare*2 - 7.3); diff > 1e-9 {
		t.Fatalf("shares are not an equal split: %v", *dto.YourShare)
	}
}

func TestSettleIsNotIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	params := SettleParams{Actor: "alice", Friend: "bob", Item: "milk", TotalPrice: 10}

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Settle(ctx, params); err != nil {
		t.Fatalf("settle: %v", err)
	}

	_, err := svc.Settle(ctx, params)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("second settle must fail with state conflict, got %v", err)
	}
}

func TestSettleUnknownClaimIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Settle(context.Background(), SettleParams{Actor: "alice", Friend: "bob", Item: "caviar", TotalPrice: 99})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSettleRejectsNegativeTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	_, err := svc.Settle(ctx, SettleParams{Actor: "alice", Friend: "bob", Item: "milk", TotalPrice: -1})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSettleZeroTotalIsAccepted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	dto, err := svc.Settle(ctx, SettleParams{Actor: "alice", Friend: "bob", Item: "milk", TotalPrice: 0})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if *dto.YourShare != 0 {
		t.Fatalf("expected zero share, got %v", *dto.YourShare)
	}
}

func TestOngoingForShowsFriendPurchases(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "bob"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "eggs", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	ongoing, err := svc.OngoingFor(ctx, "alice")
	if err != nil {
		t.Fatalf("ongoing: %v", err)
	}
	if len(ongoing) != 1 || ongoing[0].Item != "milk" {
		t.Fatalf("expected only the friend's purchase, got %+v", ongoing)
	}
}

func TestPreviewMatchesSettleMath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, 7.3)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	if _, err := svc.Claim(ctx, ClaimParams{Actor: "alice", Friend: "bob", Item: "milk", Buyer: "alice"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	settled, err := svc.Settle(ctx, SettleParams{Actor: "alice", Friend: "bob", Item: "milk", TotalPrice: 7.3})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if preview.YourShare != *settled.YourShare {
		t.Fatalf("preview %v and settlement %v disagree", preview.YourShare, *settled.YourShare)
	}
}
