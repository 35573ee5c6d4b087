package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
)

func setupPurchasesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS purchase_claims`).Error)
	require.NoError(t, db.Exec(`
CREATE TABLE purchase_claims (
  id TEXT PRIMARY KEY,
  item TEXT NOT NULL,
  user_low TEXT NOT NULL,
  user_high TEXT NOT NULL,
  buyer TEXT NOT NULL,
  settled BOOLEAN NOT NULL DEFAULT FALSE,
  total_price REAL,
  low_share REAL,
  high_share REAL,
  settled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (item, user_low, user_high)
);`).Error)
	return db
}

func seedClaim(t *testing.T, repo Repository, item, userLow, userHigh, buyer string) models.PurchaseClaim {
	t.Helper()
	claim := models.PurchaseClaim{
		ID:       uuid.New(),
		Item:     item,
		UserLow:  userLow,
		UserHigh: userHigh,
		Buyer:    buyer,
	}
	require.NoError(t, repo.Create(context.Background(), &claim))
	return claim
}

func TestCreateRejectsDuplicatePairForItem(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)

	seedClaim(t, repo, "milk", "alice", "bob", "alice")

	dup := models.PurchaseClaim{ID: uuid.New(), Item: "milk", UserLow: "alice", UserHigh: "bob", Buyer: "bob"}
	err := repo.Create(context.Background(), &dup)
	require.Error(t, err)

	// Same item with another pair is a distinct claim key.
	other := models.PurchaseClaim{ID: uuid.New(), Item: "milk", UserLow: "alice", UserHigh: "carol", Buyer: "carol"}
	require.NoError(t, repo.Create(context.Background(), &other))
}

func TestReassignBuyerClearsStalePrice(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	claim := seedClaim(t, repo, "milk", "alice", "bob", "alice")
	price := 9.99
	require.NoError(t, db.Model(&models.PurchaseClaim{}).Where("id = ?", claim.ID).Update("total_price", &price).Error)

	rows, err := repo.ReassignBuyer(ctx, "milk", "alice", "bob", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := repo.Find(ctx, "milk", "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Buyer)
	assert.Nil(t, got.TotalPrice)
	assert.False(t, got.Settled)
}

func TestReassignBuyerSkipsSettledClaims(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedClaim(t, repo, "milk", "alice", "bob", "alice")
	rows, err := repo.Settle(ctx, "milk", "alice", "bob", 10, 5, 5, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	rows, err = repo.ReassignBuyer(ctx, "milk", "alice", "bob", "bob")
	require.NoError(t, err)
	assert.Zero(t, rows)

	got, err := repo.Find(ctx, "milk", "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Buyer)
	require.NotNil(t, got.TotalPrice)
	assert.Equal(t, float64(10), *got.TotalPrice)
}

func TestSettleGuardsAgainstDoubleSettle(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedClaim(t, repo, "milk", "alice", "bob", "alice")

	rows, err := repo.Settle(ctx, "milk", "alice", "bob", 7.5, 3.75, 3.75, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Settle(ctx, "milk", "alice", "bob", 7.5, 3.75, 3.75, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, rows, "settling twice must touch nothing")

	got, err := repo.Find(ctx, "milk", "alice", "bob")
	require.NoError(t, err)
	assert.True(t, got.Settled)
	require.NotNil(t, got.SettledAt)
	require.NotNil(t, got.LowShare)
	require.NotNil(t, got.HighShare)
	assert.Equal(t, 3.75, *got.LowShare)
}

func TestOngoingForExcludesOwnClaimsAndSettled(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedClaim(t, repo, "milk", "alice", "bob", "bob")
	seedClaim(t, repo, "eggs", "alice", "bob", "alice")
	seedClaim(t, repo, "bread", "alice", "carol", "carol")
	_, err := repo.Settle(ctx, "bread", "alice", "carol", 4, 2, 2, time.Now().UTC())
	require.NoError(t, err)

	claims, err := repo.OngoingFor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "milk", claims[0].Item)
	assert.Equal(t, "bob", claims[0].Buyer)
}

func TestClaimedByReturnsDistinctUnsettledItems(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedClaim(t, repo, "milk", "alice", "bob", "alice")
	seedClaim(t, repo, "milk", "alice", "carol", "alice")
	seedClaim(t, repo, "eggs", "alice", "bob", "bob")
	seedClaim(t, repo, "bread", "alice", "carol", "alice")
	_, err := repo.Settle(ctx, "bread", "alice", "carol", 4, 2, 2, time.Now().UTC())
	require.NoError(t, err)

	items, err := repo.ClaimedBy(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, items)
}

func TestClaimedByReturnsEmptySliceWhenBuyingNothing(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)

	items, err := repo.ClaimedBy(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, items, "empty result must render as an empty JSON array")
	assert.Empty(t, items)
}

func TestHistoryForReturnsOnlySettledClaims(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedClaim(t, repo, "milk", "alice", "bob", "alice")
	seedClaim(t, repo, "eggs", "alice", "bob", "bob")
	seedClaim(t, repo, "jam", "bob", "carol", "bob")
	_, err := repo.Settle(ctx, "milk", "alice", "bob", 10, 5, 5, time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.Settle(ctx, "jam", "bob", "carol", 6, 3, 3, time.Now().UTC())
	require.NoError(t, err)

	claims, next, err := repo.HistoryFor(ctx, "alice", nil, 10)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, claims, 1)
	assert.Equal(t, "milk", claims[0].Item)
	assert.True(t, claims[0].Settled)
}

func TestHistoryForCursorLosesNoRows(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	items := []string{"milk", "eggs", "bread", "jam", "rice"}
	for i, item := range items {
		claim := models.PurchaseClaim{
			ID:        uuid.New(),
			Item:      item,
			UserLow:   "alice",
			UserHigh:  "bob",
			Buyer:     "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, &claim))
		rows, err := repo.Settle(ctx, item, "alice", "bob", 10, 5, 5, time.Now().UTC())
		require.NoError(t, err)
		require.Equal(t, int64(1), rows)
	}

	first, next, err := repo.HistoryFor(ctx, "alice", nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, next)

	second, next, err := repo.HistoryFor(ctx, "alice", next, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Nil(t, next)

	seen := make(map[string]bool)
	for _, claim := range append(first, second...) {
		seen[claim.Item] = true
	}
	for _, item := range items {
		assert.True(t, seen[item], "settled claim for %s missing from paged history", item)
	}
}
