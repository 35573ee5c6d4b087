package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/groceryshare-backend/api/middleware"
	"github.com/angelmondragon/groceryshare-backend/api/responses"
	"github.com/angelmondragon/groceryshare-backend/api/validators"
	"github.com/angelmondragon/groceryshare-backend/internal/purchases"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/logger"
	"github.com/angelmondragon/groceryshare-backend/pkg/pagination"
)

type claimPayload struct {
	Item   string `json:"item" validate:"required"`
	Friend string `json:"friend" validate:"required"`
	Buyer  string `json:"buyer" validate:"required"`
}

type settlePayload struct {
	Item       string   `json:"item" validate:"required"`
	Friend     string   `json:"friend" validate:"required"`
	TotalPrice *float64 `json:"total_price" validate:"required"`
}

// PurchasesClaim marks one of the pair as the buyer for an item.
func PurchasesClaim(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		var payload claimPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claim, err := svc.Claim(ctx, purchases.ClaimParams{
			Actor:  actor,
			Friend: payload.Friend,
			Item:   payload.Item,
			Buyer:  payload.Buyer,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

// PurchasesSettle fixes the shares for a claimed item. Irreversible.
func PurchasesSettle(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		var payload settlePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claim, err := svc.Settle(ctx, purchases.SettleParams{
			Actor:      actor,
			Friend:     payload.Friend,
			Item:       payload.Item,
			TotalPrice: *payload.TotalPrice,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

// PurchasesPreview shows the split for a total without persisting anything.
func PurchasesPreview(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("total"))
		if raw == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "total is required"))
			return
		}
		total, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "total must be numeric"))
			return
		}

		preview, err := svc.Preview(ctx, total)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// PurchasesOngoing lists unsettled claims where a friend buys for the caller.
func PurchasesOngoing(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		claims, err := svc.OngoingFor(ctx, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"claims": claims})
	}
}

// PurchasesClaimed lists the item names the caller is currently buying.
func PurchasesClaimed(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		items, err := svc.ClaimedBy(ctx, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// PurchasesHistory lists the caller's settled claims, cursor-paginated.
func PurchasesHistory(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
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

		result, err := svc.HistoryFor(ctx, actor, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
