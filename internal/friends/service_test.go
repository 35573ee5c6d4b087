package friends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
)

type fakeRepository struct {
	pairs     map[[2]string]time.Time
	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{pairs: make(map[[2]string]time.Time)}
}

func (f *fakeRepository) CreatePair(ctx context.Context, username, friend string) error {
	if f.createErr != nil {
		return f.createErr
	}
	key := [2]string{username, friend}
	if _, ok := f.pairs[key]; ok {
		return errors.New("UNIQUE constraint failed: friendships.username, friendships.friend_username")
	}
	now := time.Now().UTC()
	f.pairs[key] = now
	f.pairs[[2]string{friend, username}] = now
	return nil
}

func (f *fakeRepository) DeletePair(ctx context.Context, username, friend string) (int64, error) {
	var removed int64
	for _, key := range [][2]string{{username, friend}, {friend, username}} {
		if _, ok := f.pairs[key]; ok {
			delete(f.pairs, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeRepository) List(ctx context.Context, username string) ([]models.Friendship, error) {
	var rows []models.Friendship
	for key, at := range f.pairs {
		if key[0] == username {
			rows = append(rows, models.Friendship{Username: key[0], FriendUsername: key[1], CreatedAt: at})
		}
	}
	return rows, nil
}

func (f *fakeRepository) Exists(ctx context.Context, username, friend string) (bool, error) {
	_, ok := f.pairs[[2]string{username, friend}]
	return ok, nil
}

type fakeUserChecker struct {
	known map[string]bool
}

func (f fakeUserChecker) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return f.known[username], nil
}

func newTestService(t *testing.T, known ...string) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	users := fakeUserChecker{known: make(map[string]bool)}
	for _, name := range known {
		users.known[name] = true
	}
	svc, err := NewService(ServiceParams{Repo: repo, Users: users})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func TestAddCreatesSymmetricFriendship(t *testing.T) {
	svc, repo := newTestService(t, "bob")
	ctx := context.Background()

	if err := svc.Add(ctx, "alice", "bob"); err != nil {
		t.Fatalf("add: %v", err)
	}

	forward, _ := repo.Exists(ctx, "alice", "bob")
	reverse, _ := repo.Exists(ctx, "bob", "alice")
	if !forward || !reverse {
		t.Fatalf("expected both directions, got forward=%v reverse=%v", forward, reverse)
	}
}

func TestAddSelfFriendshipRejected(t *testing.T) {
	svc, _ := newTestService(t, "alice")
	err := svc.Add(context.Background(), "alice", "alice")
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddUnknownFriendRejected(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Add(context.Background(), "alice", "ghost")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAddDuplicateConflictsFromEitherSide(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob")
	ctx := context.Background()

	if err := svc.Add(ctx, "alice", "bob"); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := svc.Add(ctx, "bob", "alice")
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for reversed duplicate, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t, "bob")
	ctx := context.Background()

	if err := svc.Add(ctx, "alice", "bob"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, "alice", "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(repo.pairs) != 0 {
		t.Fatalf("expected empty ledger, got %d rows", len(repo.pairs))
	}
	if err := svc.Remove(ctx, "alice", "bob"); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestListReturnsFriendUsernames(t *testing.T) {
	svc, _ := newTestService(t, "bob", "carol")
	ctx := context.Background()

	if err := svc.Add(ctx, "alice", "bob"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Add(ctx, "alice", "carol"); err != nil {
		t.Fatalf("add: %v", err)
	}

	list, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 friends, got %d", len(list))
	}
}
