package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/groceryshare-backend/api/middleware"
	"github.com/angelmondragon/groceryshare-backend/api/responses"
	"github.com/angelmondragon/groceryshare-backend/internal/matches"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/logger"
)

// MatchesFind returns the caller's grocery overlaps grouped by friend.
func MatchesFind(svc matches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "matches service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		result, err := svc.Find(ctx, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"matches": result})
	}
}

// MatchesFindWith returns overlaps with one friend only.
func MatchesFindWith(svc matches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "matches service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		friend := strings.TrimSpace(chi.URLParam(r, "friend"))
		if friend == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "friend is required"))
			return
		}

		result, err := svc.FindWith(ctx, actor, friend)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"matches": result})
	}
}
