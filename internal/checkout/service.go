package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/internal/cart"
	"github.com/angelmondragon/rxcart-backend/internal/checkout/helpers"
	"github.com/angelmondragon/rxcart-backend/internal/medicines"
	"github.com/angelmondragon/rxcart-backend/internal/notifications"
	"github.com/angelmondragon/rxcart-backend/internal/orders"
	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	pkgcheckout "github.com/angelmondragon/rxcart-backend/pkg/checkout"
	"github.com/angelmondragon/rxcart-backend/pkg/config"
	pkgdb "github.com/angelmondragon/rxcart-backend/pkg/db"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
	"github.com/angelmondragon/rxcart-backend/pkg/razorpay"
	"github.com/angelmondragon/rxcart-backend/pkg/security"
)

// Gateway notes keys read back by the payment callback.
const (
	NoteUserID       = "user_id"
	NoteCheckoutData = "checkout_data"
)

// razorpay caps each note value at 256 characters
const maxNoteLength = 256

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type prescriptionLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Prescription, error)
}

type paymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (razorpay.Intent, error)
}

type reminderScheduler interface {
	CreateForOrder(ctx context.Context, order models.Order) error
}

type placementNotifier interface {
	OrderPlaced(ctx context.Context, s notifications.Subject) bool
	OrderReceived(ctx context.Context, s notifications.Subject) bool
	VerificationCodeIssued(ctx context.Context, s notifications.Subject) bool
	AdvanceOrderPlaced(ctx context.Context, s notifications.Subject) bool
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, actor auth.Actor, form Form) (*orders.OrderDTO, error)
	BeginOnlinePayment(ctx context.Context, actor auth.Actor, form Form) (*PaymentIntent, error)
	CompleteOnlinePayment(ctx context.Context, actor auth.Actor, payment GatewayPayment, form Form) (*orders.OrderDTO, error)
}

// Form is the checkout form submitted by the customer.
type Form struct {
	DeliveryMethod  string     `json:"delivery_method" validate:"required,oneof=pickup home_delivery"`
	DeliveryAddress string     `json:"delivery_address,omitempty" validate:"max=500"`
	DeliveryEmail   string     `json:"delivery_email,omitempty" validate:"omitempty,email"`
	PhoneNumber     string     `json:"phone_number,omitempty" validate:"max=20"`
	PaymentMethod   string     `json:"payment_method" validate:"required,oneof=cod online card"`
	Notes           string     `json:"notes,omitempty" validate:"max=500"`
	PrescriptionID  *uuid.UUID `json:"prescription_id,omitempty"`
}

// GatewayPayment identifies a captured online payment.
type GatewayPayment struct {
	GatewayOrderID   string
	GatewayPaymentID string
}

// PaymentIntent is what the browser needs to open the payment widget.
type PaymentIntent struct {
	GatewayOrderID string          `json:"razorpay_order_id"`
	AmountMinor    int64           `json:"amount"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_charges"`
	Total          decimal.Decimal `json:"total_amount"`
}

type service struct {
	tx            txRunner
	cartRepo      cart.CartRepository
	ordersRepo    orders.Repository
	medicineRepo  medicines.Repository
	prescriptions prescriptionLoader
	gateway       paymentGateway
	gatewayKeyID  string
	reminders     reminderScheduler
	notifier      placementNotifier
	logg          *logger.Logger
	cfg           config.CheckoutConfig
	dispatch      func(func())
}

// Deps groups the collaborators of the checkout service. Gateway may be nil
// when online payments are not configured.
type Deps struct {
	Tx            txRunner
	Cart          cart.CartRepository
	Orders        orders.Repository
	Medicines     medicines.Repository
	Prescriptions prescriptionLoader
	Gateway       paymentGateway
	GatewayKeyID  string
	Reminders     reminderScheduler
	Notifier      placementNotifier
	Logger        *logger.Logger
	Config        config.CheckoutConfig
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Medicines == nil {
		return nil, fmt.Errorf("medicine repository required")
	}
	if deps.Prescriptions == nil {
		return nil, fmt.Errorf("prescription loader required")
	}
	if deps.Reminders == nil {
		return nil, fmt.Errorf("reminder scheduler required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Config.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must be non-negative")
	}
	if deps.Config.Currency == "" {
		deps.Config.Currency = "INR"
	}
	return &service{
		tx:            deps.Tx,
		cartRepo:      deps.Cart,
		ordersRepo:    deps.Orders,
		medicineRepo:  deps.Medicines,
		prescriptions: deps.Prescriptions,
		gateway:       deps.Gateway,
		gatewayKeyID:  deps.GatewayKeyID,
		reminders:     deps.Reminders,
		notifier:      deps.Notifier,
		logg:          deps.Logger,
		cfg:           deps.Config,
		dispatch:      func(fn func()) { go fn() },
	}, nil
}

// placement describes how a materialized order is paid for.
type placement struct {
	status        enums.OrderStatus
	paymentStatus enums.PaymentStatus
	gateway       *GatewayPayment
}

func (s *service) Execute(ctx context.Context, actor auth.Actor, form Form) (*orders.OrderDTO, error) {
	delivery, err := s.validateForm(ctx, actor, form)
	if err != nil {
		return nil, err
	}
	var paymentStatus enums.PaymentStatus
	switch delivery.PaymentMethod {
	case enums.PaymentMethodCOD:
		paymentStatus = enums.PaymentStatusPending
	case enums.PaymentMethodCard:
		paymentStatus = enums.PaymentStatusPaid
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "online payments must go through the payment gateway")
	}

	order, err := s.materialize(ctx, actor, form, delivery, placement{
		status:        enums.OrderStatusPending,
		paymentStatus: paymentStatus,
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, *order)
	dto := orders.FromModel(*order, true)
	return &dto, nil
}

func (s *service) BeginOnlinePayment(ctx context.Context, actor auth.Actor, form Form) (*PaymentIntent, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payments are not available")
	}
	form.PaymentMethod = string(enums.PaymentMethodOnline)
	delivery, err := s.validateForm(ctx, actor, form)
	if err != nil {
		return nil, err
	}

	record, err := s.cartRepo.FindByUser(ctx, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	var items []models.CartItem
	if record != nil {
		if items, err = s.cartRepo.ListItems(ctx, record.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
	}
	if err := helpers.ValidateCartItems(items); err != nil {
		return nil, err
	}
	if _, err := helpers.ResolvePharmacy(actor, items); err != nil {
		return nil, err
	}
	totals := pkgcheckout.ComputeTotals(helpers.PricedLines(items), delivery.DeliveryMethod, s.cfg.DeliveryFee)
	amount := pkgcheckout.MinorUnits(totals.Total)
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout data")
	}
	if len(formJSON) > maxNoteLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout details are too long for online payment")
	}
	notes := map[string]string{
		NoteUserID:       actor.UserID.String(),
		NoteCheckoutData: string(formJSON),
	}
	receipt := "rx_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	intent, err := s.gateway.CreateIntent(ctx, amount, s.cfg.Currency, receipt, notes)
	if err != nil {
		s.logg.Error(ctx, "checkout.payment_intent_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment order")
	}
	keyID := intent.KeyID
	if keyID == "" {
		keyID = s.gatewayKeyID
	}
	return &PaymentIntent{
		GatewayOrderID: intent.ID,
		AmountMinor:    intent.AmountMinor,
		Currency:       intent.Currency,
		KeyID:          keyID,
		Subtotal:       totals.Subtotal,
		DeliveryFee:    totals.DeliveryCharges,
		Total:          totals.Total,
	}, nil
}

// CompleteOnlinePayment materializes the order for a verified payment. A
// repeat for the same gateway order returns the order created the first time.
func (s *service) CompleteOnlinePayment(ctx context.Context, actor auth.Actor, payment GatewayPayment, form Form) (*orders.OrderDTO, error) {
	payment.GatewayOrderID = strings.TrimSpace(payment.GatewayOrderID)
	payment.GatewayPaymentID = strings.TrimSpace(payment.GatewayPaymentID)
	if payment.GatewayOrderID == "" || payment.GatewayPaymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order and payment ids required")
	}
	if existing, err := s.existingForGateway(ctx, payment.GatewayOrderID); err != nil || existing != nil {
		return existing, err
	}

	form.PaymentMethod = string(enums.PaymentMethodOnline)
	delivery, err := s.validateForm(ctx, actor, form)
	if err != nil {
		return nil, err
	}
	order, err := s.materialize(ctx, actor, form, delivery, placement{
		status:        enums.OrderStatusConfirmed,
		paymentStatus: enums.PaymentStatusPaid,
		gateway:       &payment,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			if existing, findErr := s.existingForGateway(ctx, payment.GatewayOrderID); findErr == nil && existing != nil {
				return existing, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment already recorded")
		}
		return nil, err
	}
	s.afterCommit(ctx, *order)
	dto := orders.FromModel(*order, true)
	return &dto, nil
}

func (s *service) existingForGateway(ctx context.Context, gatewayOrderID string) (*orders.OrderDTO, error) {
	order, err := s.ordersRepo.FindOrderByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by gateway id")
	}
	dto := orders.FromModel(*order, true)
	return &dto, nil
}

func (s *service) validateForm(ctx context.Context, actor auth.Actor, form Form) (pkgcheckout.ValidatedDelivery, error) {
	if actor.UserID == uuid.Nil {
		return pkgcheckout.ValidatedDelivery{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	delivery, err := pkgcheckout.ValidateDelivery(pkgcheckout.DeliveryInput{
		DeliveryMethod:  form.DeliveryMethod,
		DeliveryAddress: form.DeliveryAddress,
		PaymentMethod:   form.PaymentMethod,
	})
	if err != nil {
		return pkgcheckout.ValidatedDelivery{}, err
	}
	if form.PrescriptionID != nil {
		p, err := s.prescriptions.FindByID(ctx, *form.PrescriptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgcheckout.ValidatedDelivery{}, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
			}
			return pkgcheckout.ValidatedDelivery{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load prescription")
		}
		if p.CustomerID != actor.UserID {
			return pkgcheckout.ValidatedDelivery{}, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
		}
	}
	return delivery, nil
}

// materialize turns the cart into an order in one transaction. Any failure
// rolls back stock, order rows and the cart clear together.
func (s *service) materialize(
	ctx context.Context,
	actor auth.Actor,
	form Form,
	delivery pkgcheckout.ValidatedDelivery,
	how placement,
) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		medicineRepo := s.medicineRepo.WithTx(tx)

		record, err := cartRepo.FindByUser(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return err
		}
		items, err := cartRepo.ListItems(ctx, record.ID)
		if err != nil {
			return err
		}
		if err := helpers.ValidateCartItems(items); err != nil {
			return err
		}
		pharmacyID, err := helpers.ResolvePharmacy(actor, items)
		if err != nil {
			return err
		}
		totals := pkgcheckout.ComputeTotals(helpers.PricedLines(items), delivery.DeliveryMethod, s.cfg.DeliveryFee)

		code, err := security.GenerateVerificationCode()
		if err != nil {
			return err
		}
		inStock, advanceItems := helpers.SplitByFulfillment(items)
		order = &models.Order{
			CustomerID:       actor.UserID,
			PharmacyID:       pharmacyID,
			PrescriptionID:   form.PrescriptionID,
			Status:           how.status,
			PaymentMethod:    delivery.PaymentMethod,
			PaymentStatus:    how.paymentStatus,
			DeliveryMethod:   delivery.DeliveryMethod,
			DeliveryAddress:  delivery.DeliveryAddress,
			DeliveryEmail:    strings.TrimSpace(form.DeliveryEmail),
			PhoneNumber:      strings.TrimSpace(form.PhoneNumber),
			Notes:            strings.TrimSpace(form.Notes),
			Subtotal:         totals.Subtotal,
			DeliveryCharges:  totals.DeliveryCharges,
			TotalAmount:      totals.Total,
			VerificationCode: code,
			IsAdvanceOrder:   len(advanceItems) > 0,
			Items:            helpers.BuildOrderItems(items),
		}
		if how.gateway != nil {
			order.GatewayOrderID = &how.gateway.GatewayOrderID
			order.GatewayPaymentID = &how.gateway.GatewayPaymentID
		}
		var advanceType enums.AdvanceOrderType
		if len(advanceItems) > 0 {
			advanceType = advanceOrderType(form, advanceItems)
			order.AdvanceOrderType = &advanceType
		}
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, item := range inStock {
			if err := medicineRepo.DecrementStock(ctx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
		}

		if len(advanceItems) > 0 {
			advanceCode, err := security.GenerateVerificationCode()
			if err != nil {
				return err
			}
			advance := &models.AdvanceOrder{
				OrderID:          order.ID,
				CustomerID:       order.CustomerID,
				PharmacyID:       pharmacyID,
				OrderType:        advanceType,
				Status:           enums.AdvanceOrderStatusPending,
				VerificationCode: advanceCode,
				Items:            helpers.BuildAdvanceItems(advanceItems),
			}
			if err := ordersRepo.CreateAdvanceOrder(ctx, advance); err != nil {
				return err
			}
			order.AdvanceOrder = advance
		}

		return cartRepo.ClearItems(ctx, record.ID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil || pkgdb.IsUniqueViolation(err, "") {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout failed")
	}
	return order, nil
}

func advanceOrderType(form Form, advanceItems []models.CartItem) enums.AdvanceOrderType {
	if form.PrescriptionID != nil {
		return enums.AdvanceOrderTypePrescription
	}
	for _, item := range advanceItems {
		if item.PrescriptionMedicineID != nil {
			return enums.AdvanceOrderTypePrescription
		}
	}
	return enums.AdvanceOrderTypeRestock
}

// afterCommit schedules reminders and notifications. Neither can fail the
// checkout; outcomes are only logged.
func (s *service) afterCommit(ctx context.Context, order models.Order) {
	bg := s.logg.WithOrderID(context.WithoutCancel(ctx), order.ID.String())
	subject := notifications.FromOrder(order)

	s.dispatch(func() {
		if err := s.reminders.CreateForOrder(bg, order); err != nil {
			s.logg.Error(bg, "checkout.reminders_failed", err)
		}
	})
	sends := []struct {
		name string
		send func(context.Context, notifications.Subject) bool
	}{
		{"order_placed", s.notifier.OrderPlaced},
		{"order_received", s.notifier.OrderReceived},
		{"verification_code", s.notifier.VerificationCodeIssued},
	}
	if order.AdvanceOrder != nil {
		advanceSubject := notifications.FromAdvanceOrder(*order.AdvanceOrder)
		s.dispatch(func() {
			if !s.notifier.AdvanceOrderPlaced(bg, advanceSubject) {
				s.logg.Warn(s.logg.WithField(bg, "notification", "advance_order_placed"), "checkout.notification_failed")
			}
		})
	}
	for _, n := range sends {
		n := n
		s.dispatch(func() {
			if !n.send(bg, subject) {
				s.logg.Warn(s.logg.WithField(bg, "notification", n.name), "checkout.notification_failed")
			}
		})
	}
}
