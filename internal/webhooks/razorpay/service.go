// Package razorpaywebhook completes online checkouts from the payment
// widget callback.
package razorpaywebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/internal/checkout"
	"github.com/angelmondragon/rxcart-backend/internal/orders"
	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

type gatewayClient interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	FetchNotes(ctx context.Context, orderID string) (map[string]string, error)
}

type paymentCompleter interface {
	CompleteOnlinePayment(ctx context.Context, actor auth.Actor, payment checkout.GatewayPayment, form checkout.Form) (*orders.OrderDTO, error)
}

type orderLookup interface {
	FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type claimGuard interface {
	CheckAndMark(ctx context.Context, gatewayOrderID string) (bool, error)
	Release(ctx context.Context, gatewayOrderID string) error
}

// Callback is the payload the checkout widget posts after payment.
type Callback struct {
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// Result tells the browser where to go next.
type Result struct {
	OrderID     uuid.UUID `json:"order_id"`
	RedirectURL string    `json:"redirect_url"`
	Duplicate   bool      `json:"duplicate,omitempty"`
}

type ServiceParams struct {
	Gateway       gatewayClient
	Checkout      paymentCompleter
	Orders        orderLookup
	Users         userLoader
	Guard         claimGuard
	Logger        *logger.Logger
	PublicBaseURL string
}

type Service struct {
	gateway  gatewayClient
	checkout paymentCompleter
	orders   orderLookup
	users    userLoader
	guard    claimGuard
	logg     *logger.Logger
	baseURL  string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway required")
	}
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repository required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		gateway:  params.Gateway,
		checkout: params.Checkout,
		orders:   params.Orders,
		users:    params.Users,
		guard:    params.Guard,
		logg:     params.Logger,
		baseURL:  strings.TrimRight(params.PublicBaseURL, "/"),
	}, nil
}

// HandleCallback verifies the signature, claims the gateway order and
// materializes the checkout recorded in the gateway order notes. A repeated
// callback returns the order created by the first one.
func (s *Service) HandleCallback(ctx context.Context, cb Callback) (*Result, error) {
	cb.PaymentID = strings.TrimSpace(cb.PaymentID)
	cb.OrderID = strings.TrimSpace(cb.OrderID)
	cb.Signature = strings.TrimSpace(cb.Signature)
	if cb.PaymentID == "" || cb.OrderID == "" || cb.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing payment parameters")
	}
	if !s.gateway.VerifyPaymentSignature(cb.OrderID, cb.PaymentID, cb.Signature) {
		s.logg.Warn(s.logg.WithField(ctx, "razorpay_order_id", cb.OrderID), "razorpay.signature_invalid")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment verification failed")
	}
	ctx = s.logg.WithField(ctx, "razorpay_order_id", cb.OrderID)

	claimed, err := s.guard.CheckAndMark(ctx, cb.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim payment callback")
	}
	if claimed {
		return s.existing(ctx, cb.OrderID)
	}

	result, err := s.complete(ctx, cb)
	if err != nil {
		if relErr := s.guard.Release(context.WithoutCancel(ctx), cb.OrderID); relErr != nil {
			s.logg.Error(ctx, "razorpay.release_claim_failed", relErr)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) complete(ctx context.Context, cb Callback) (*Result, error) {
	notes, err := s.gateway.FetchNotes(ctx, cb.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment order")
	}
	userID, err := uuid.Parse(notes[checkout.NoteUserID])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment order has no valid user")
	}
	var form checkout.Form
	if err := json.Unmarshal([]byte(notes[checkout.NoteCheckoutData]), &form); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment order has no checkout data")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	actor := auth.Actor{UserID: user.ID, Role: user.Role, PharmacyID: user.PharmacyID}

	order, err := s.checkout.CompleteOnlinePayment(ctx, actor, checkout.GatewayPayment{
		GatewayOrderID:   cb.OrderID,
		GatewayPaymentID: cb.PaymentID,
	}, form)
	if err != nil {
		s.logg.Error(ctx, "razorpay.complete_failed", err)
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "razorpay.payment_completed")
	return &Result{OrderID: order.ID, RedirectURL: s.redirectFor(order.ID)}, nil
}

func (s *Service) existing(ctx context.Context, gatewayOrderID string) (*Result, error) {
	order, err := s.orders.FindOrderByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the first callback still holds the claim
			return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "payment is already being processed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &Result{OrderID: order.ID, RedirectURL: s.redirectFor(order.ID), Duplicate: true}, nil
}

func (s *Service) redirectFor(orderID uuid.UUID) string {
	return s.baseURL + "/orders/" + orderID.String()
}
