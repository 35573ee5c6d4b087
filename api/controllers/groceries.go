package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/groceryshare-backend/api/middleware"
	"github.com/angelmondragon/groceryshare-backend/api/responses"
	"github.com/angelmondragon/groceryshare-backend/api/validators"
	"github.com/angelmondragon/groceryshare-backend/internal/groceries"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/logger"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
)

type addGroceryItemPayload struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required"`
	Unit     string  `json:"unit" validate:"required"`
}

// GroceriesList returns the caller's list, newest first, cursor-paginated.
func GroceriesList(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groceries service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.ListItems(ctx, actor, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GroceriesAdd appends one entry to the caller's list.
func GroceriesAdd(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groceries service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		var payload addGroceryItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.AddItem(ctx, groceries.AddItemParams{
			Username: actor,
			Name:     payload.Name,
			Quantity: payload.Quantity,
			Unit:     payload.Unit,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// GroceriesRemove deletes every row with the exact name and reports the count.
func GroceriesRemove(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groceries service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item name"))
			return
		}
		if strings.TrimSpace(name) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item name is required"))
			return
		}

		removed, err := svc.RemoveItem(ctx, actor, name)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}
