package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
)

// Service lists the messages a user has been sent.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// NotificationDTO is the audit row without the rendered body.
type NotificationDTO struct {
	ID        uuid.UUID                `json:"id"`
	Event     enums.NotificationEvent  `json:"event"`
	Subject   string                   `json:"subject"`
	Status    enums.NotificationStatus `json:"status"`
	OrderID   *uuid.UUID               `json:"order_id,omitempty"`
	SentAt    *time.Time               `json:"sent_at,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificationDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID: params.UserID,
		Limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListForUser(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, n := range rows {
		items = append(items, NotificationDTO{
			ID:        n.ID,
			Event:     n.Event,
			Subject:   n.Subject,
			Status:    n.Status,
			OrderID:   n.OrderID,
			SentAt:    n.SentAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return &ListResult{
		Items:  items,
		Cursor: cursor,
	}, nil
}
