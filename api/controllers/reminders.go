package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/api/responses"
	"github.com/angelmondragon/rxcart-backend/internal/reminders"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

// ReminderLister is the read side of the reminder service.
type ReminderLister interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]reminders.ReminderDTO, error)
}

func ListReminders(svc ReminderLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListForUser(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
