package groceries

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/groceryshare-backend/pkg/db/models"
	"github.com/angelmondragon/groceryshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
)

const maxItemNameLength = 128

// Service defines grocery list operations. Lists are append-only: adding the
// same name twice creates a second row rather than merging quantities.
type Service interface {
	AddItem(ctx context.Context, params AddItemParams) (*GroceryItemDTO, error)
	RemoveItem(ctx context.Context, username, name string) (int64, error)
	ListItems(ctx context.Context, username string, page pagination.Params) (*ListResult, error)
}

type service struct {
	repo Repository
}

// ServiceParams bundles the dependencies required to build a groceries service.
type ServiceParams struct {
	Repo Repository
}

// NewService wires the grocery list dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "groceries repository required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) AddItem(ctx context.Context, params AddItemParams) (*GroceryItemDTO, error) {
	if strings.TrimSpace(params.Username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if len(params.Name) > maxItemNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name too long")
	}
	if params.Quantity <= 0 || math.IsInf(params.Quantity, 0) || math.IsNaN(params.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	unit, err := enums.ParseGroceryUnit(params.Unit)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown unit")
	}

	item := models.GroceryItem{
		ID:       uuid.New(),
		Username: params.Username,
		Name:     params.Name,
		Quantity: params.Quantity,
		Unit:     unit,
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create grocery item")
	}
	dto := fromModel(item)
	return &dto, nil
}

// RemoveItem deletes every row matching the name byte-for-byte and returns
// how many were removed. Removing a name that is not on the list is a no-op.
func (s *service) RemoveItem(ctx context.Context, username, name string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if strings.TrimSpace(name) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	removed, err := s.repo.DeleteByName(ctx, username, name)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grocery items")
	}
	return removed, nil
}

func (s *service) ListItems(ctx context.Context, username string, page pagination.Params) (*ListResult, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items, next, err := s.repo.ListPage(ctx, username, cursor, page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grocery items")
	}

	result := ListResult{Items: make([]GroceryItemDTO, 0, len(items))}
	for _, item := range items {
		result.Items = append(result.Items, fromModel(item))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return &result, nil
}
