package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/internal/notifications"
	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
	"github.com/angelmondragon/rxcart-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type statusNotifier interface {
	StatusUpdatedForCustomer(ctx context.Context, s notifications.Subject) bool
	StatusUpdatedForPharmacy(ctx context.Context, s notifications.Subject) bool
}

// Service defines the order state machine and order reads.
type Service interface {
	UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status string) (*OrderDTO, error)
	UpdateAdvanceStatus(ctx context.Context, actor auth.Actor, advanceID uuid.UUID, input AdvanceStatusInput) (*AdvanceOrderDTO, error)
	UpdateItemQuantity(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID, qty int) (*OrderDTO, error)
	RemoveItem(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID) (*OrderDTO, error)
	VerifyPickup(ctx context.Context, actor auth.Actor, orderID uuid.UUID, code string) (*OrderDTO, error)
	Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (pagination.Page[OrderDTO], error)
	ListForPharmacy(ctx context.Context, actor auth.Actor, status string, limit int, cursor string) (pagination.Page[OrderDTO], error)
}

// AdvanceStatusInput carries the new procurement state and optional supplier details.
type AdvanceStatusInput struct {
	Status            string
	SupplierName      *string
	SupplierContact   *string
	EstimatedDelivery *time.Time
	Notes             *string
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier statusNotifier
	logg     *logger.Logger
	now      func() time.Time
	dispatch func(func())
}

// NewService builds the order service.
func NewService(repo Repository, tx txRunner, notifier statusNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("status notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		logg:     logg,
		now:      time.Now,
		dispatch: func(fn func()) { go fn() },
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status string) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	order, err := s.loadForPharmacy(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = next
	if err := s.repo.SaveOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	s.announce(ctx, notifications.FromOrder(*order))

	dto := FromModel(*order, false)
	return &dto, nil
}

func (s *service) UpdateAdvanceStatus(ctx context.Context, actor auth.Actor, advanceID uuid.UUID, input AdvanceStatusInput) (*AdvanceOrderDTO, error) {
	next, err := enums.ParseAdvanceOrderStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid advance order status")
	}
	if !actor.IsPharmacyMember() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy staff only")
	}
	advance, err := s.repo.FindAdvanceOrder(ctx, advanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "advance order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load advance order")
	}
	if !actor.MemberOf(advance.PharmacyID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "advance order not found")
	}

	advance.Status = next
	if input.SupplierName != nil {
		advance.SupplierName = strings.TrimSpace(*input.SupplierName)
	}
	if input.SupplierContact != nil {
		advance.SupplierContact = strings.TrimSpace(*input.SupplierContact)
	}
	if input.Notes != nil {
		advance.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.EstimatedDelivery != nil {
		eta := input.EstimatedDelivery.UTC()
		advance.EstimatedDelivery = &eta
	}
	if err := s.repo.SaveAdvanceOrder(ctx, advance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update advance order status")
	}
	s.announce(ctx, notifications.FromAdvanceOrder(*advance))

	dto := AdvanceFromModel(*advance)
	return &dto, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID, qty int) (*OrderDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return s.mutateItems(ctx, actor, orderID, itemID, func(repo Repository, order *models.Order, idx int) error {
		order.Items[idx].Quantity = qty
		return repo.UpdateItemQuantity(ctx, itemID, qty)
	})
}

func (s *service) RemoveItem(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID) (*OrderDTO, error) {
	return s.mutateItems(ctx, actor, orderID, itemID, func(repo Repository, order *models.Order, idx int) error {
		order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
		return repo.DeleteItem(ctx, itemID)
	})
}

// mutateItems applies one item edit and recomputes the order totals in the
// same transaction.
func (s *service) mutateItems(
	ctx context.Context,
	actor auth.Actor,
	orderID, itemID uuid.UUID,
	apply func(repo Repository, order *models.Order, idx int) error,
) (*OrderDTO, error) {
	order, err := s.loadForPharmacy(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be edited")
	}
	idx := -1
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := apply(repo, order, idx); err != nil {
			return err
		}
		order.RecalculateTotals()
		return repo.SaveOrder(ctx, order)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order items")
	}

	dto := FromModel(*order, false)
	return &dto, nil
}

// VerifyPickup confirms the customer presented the order's verification code.
func (s *service) VerifyPickup(ctx context.Context, actor auth.Actor, orderID uuid.UUID, code string) (*OrderDTO, error) {
	order, err := s.loadForPharmacy(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already verified")
	}
	if !security.CodesEqual(order.VerificationCode, code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification code does not match")
	}
	now := s.now().UTC()
	order.IsVerified = true
	order.VerifiedAt = &now
	if err := s.repo.SaveOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify order")
	}
	dto := FromModel(*order, false)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case order.CustomerID == actor.UserID:
		dto := FromModel(*order, true)
		return &dto, nil
	case actor.MemberOf(order.PharmacyID):
		dto := FromModel(*order, false)
		return &dto, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (pagination.Page[OrderDTO], error) {
	return s.list(ctx, ListFilter{CustomerID: &customerID, Limit: limit, Cursor: cursor}, true)
}

func (s *service) ListForPharmacy(ctx context.Context, actor auth.Actor, status string, limit int, cursor string) (pagination.Page[OrderDTO], error) {
	if !actor.IsPharmacyMember() {
		return pagination.Page[OrderDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy staff only")
	}
	filter := ListFilter{PharmacyID: actor.PharmacyID, Limit: limit, Cursor: cursor}
	if status = strings.TrimSpace(status); status != "" {
		parsed, err := enums.ParseOrderStatus(status)
		if err != nil {
			return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &parsed
	}
	return s.list(ctx, filter, false)
}

func (s *service) list(ctx context.Context, filter ListFilter, includeCode bool) (pagination.Page[OrderDTO], error) {
	filter.Limit = pagination.NormalizeLimit(filter.Limit)
	rows, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return pagination.Page[OrderDTO]{}, err
		}
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := pagination.BuildPage(rows, filter.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	items := make([]OrderDTO, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, FromModel(o, includeCode))
	}
	return pagination.Page[OrderDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// loadForPharmacy hides orders of other pharmacies behind NotFound.
func (s *service) loadForPharmacy(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*models.Order, error) {
	if !actor.IsPharmacyMember() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy staff only")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.MemberOf(order.PharmacyID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// announce tells both sides about a status change. Delivery runs detached
// from the request and its outcome is only logged.
func (s *service) announce(ctx context.Context, subject notifications.Subject) {
	bg := s.logg.WithOrderID(context.WithoutCancel(ctx), subject.ID.String())
	s.dispatch(func() {
		if !s.notifier.StatusUpdatedForCustomer(bg, subject) {
			s.logg.Warn(bg, "order.status_notification_customer_failed")
		}
	})
	s.dispatch(func() {
		if !s.notifier.StatusUpdatedForPharmacy(bg, subject) {
			s.logg.Warn(bg, "order.status_notification_pharmacy_failed")
		}
	})
}
