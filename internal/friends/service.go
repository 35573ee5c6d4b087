package friends

import (
	"context"
	"strings"

	"github.com/angelmondragon/groceryshare-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
)

// Service defines friendship ledger operations.
type Service interface {
	Add(ctx context.Context, actor, friend string) error
	Remove(ctx context.Context, actor, friend string) error
	List(ctx context.Context, actor string) ([]FriendDTO, error)
	AreFriends(ctx context.Context, actor, friend string) (bool, error)
}

type userChecker interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type service struct {
	repo  Repository
	users userChecker
}

// ServiceParams bundles the dependencies required to build a friends service.
type ServiceParams struct {
	Repo  Repository
	Users userChecker
}

// NewService wires the friendship ledger dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "friends repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: params.Repo, users: params.Users}, nil
}

func (s *service) Add(ctx context.Context, actor, friend string) error {
	if err := validatePair(actor, friend); err != nil {
		return err
	}

	exists, err := s.users.ExistsByUsername(ctx, friend)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup friend")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	if err := s.repo.CreatePair(ctx, actor, friend); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "friendship already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create friendship")
	}
	return nil
}

// Remove deletes the friendship in both directions. Removing a friendship
// that does not exist is a no-op; purchase claims between the pair are
// untouched either way.
func (s *service) Remove(ctx context.Context, actor, friend string) error {
	if err := validatePair(actor, friend); err != nil {
		return err
	}
	if _, err := s.repo.DeletePair(ctx, actor, friend); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete friendship")
	}
	return nil
}

func (s *service) List(ctx context.Context, actor string) ([]FriendDTO, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	rows, err := s.repo.List(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list friends")
	}
	out := make([]FriendDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FriendDTO{Username: row.FriendUsername, Since: row.CreatedAt})
	}
	return out, nil
}

func (s *service) AreFriends(ctx context.Context, actor, friend string) (bool, error) {
	if err := validatePair(actor, friend); err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, actor, friend)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check friendship")
	}
	return ok, nil
}

func validatePair(actor, friend string) error {
	if strings.TrimSpace(actor) == "" || strings.TrimSpace(friend) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if actor == friend {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot befriend yourself")
	}
	return nil
}
