package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/groceryshare-backend/api/middleware"
	"github.com/angelmondragon/groceryshare-backend/api/responses"
	"github.com/angelmondragon/groceryshare-backend/api/validators"
	"github.com/angelmondragon/groceryshare-backend/internal/friends"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
	"github.com/angelmondragon/groceryshare-backend/pkg/logger"
)

type addFriendPayload struct {
	Username string `json:"username" validate:"required"`
}

// FriendsList returns the caller's friends with the befriended-at timestamp.
func FriendsList(svc friends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "friends service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		list, err := svc.List(ctx, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"friends": list})
	}
}

// FriendsAdd befriends the caller and the named user in both directions.
func FriendsAdd(svc friends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "friends service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		var payload addFriendPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		friend := validators.SanitizeString(payload.Username, 64)
		if err := svc.Add(ctx, actor, friend); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"added": true})
	}
}

// FriendsRemove unfriends in both directions; removing a stranger is a no-op.
func FriendsRemove(svc friends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "friends service unavailable"))
			return
		}

		actor := middleware.UsernameFromContext(ctx)
		if actor == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		friend := strings.TrimSpace(chi.URLParam(r, "username"))
		if friend == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "username is required"))
			return
		}

		if err := svc.Remove(ctx, actor, friend); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}
