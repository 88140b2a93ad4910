package controllers

import (
	"net/http"

	"github.com/angelmondragon/rxcart-backend/api/responses"
	"github.com/angelmondragon/rxcart-backend/internal/notifications"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

// ListNotifications returns the caller's notification history, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, cursor, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.List(r.Context(), notifications.ListParams{UserID: actor.UserID, Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
