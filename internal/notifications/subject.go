package notifications

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// Kind tags which order record a Subject was built from.
type Kind string

const (
	KindRegular Kind = "regular"
	KindAdvance Kind = "advance"
)

// Line is one item as shown in a message.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Subject is the order-shaped data every order message renders from. Build
// it with FromOrder or FromAdvanceOrder.
type Subject struct {
	Kind              Kind
	ID                uuid.UUID
	PharmacyID        uuid.UUID
	CustomerID        uuid.UUID
	Status            string
	StatusLabel       string
	VerificationCode  string
	DeliveryMethod    string
	DeliveryAddress   string
	ContactEmail      string
	PaymentMethod     string
	Lines             []Line
	Subtotal          decimal.Decimal
	DeliveryCharges   decimal.Decimal
	Total             decimal.Decimal
	SupplierName      string
	EstimatedDelivery *time.Time
	CreatedAt         time.Time
}

func FromOrder(o models.Order) Subject {
	s := Subject{
		Kind:             KindRegular,
		ID:               o.ID,
		PharmacyID:       o.PharmacyID,
		CustomerID:       o.CustomerID,
		Status:           string(o.Status),
		StatusLabel:      o.Status.Label(),
		VerificationCode: o.VerificationCode,
		DeliveryMethod:   string(o.DeliveryMethod),
		DeliveryAddress:  o.DeliveryAddress,
		ContactEmail:     o.DeliveryEmail,
		PaymentMethod:    string(o.PaymentMethod),
		Subtotal:         o.Subtotal,
		DeliveryCharges:  o.DeliveryCharges,
		Total:            o.TotalAmount,
		CreatedAt:        o.CreatedAt,
	}
	for _, item := range o.Items {
		s.Lines = append(s.Lines, Line{
			Name:      item.MedicineName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.TotalPrice(),
		})
	}
	return s
}

func FromAdvanceOrder(a models.AdvanceOrder) Subject {
	s := Subject{
		Kind:              KindAdvance,
		ID:                a.ID,
		PharmacyID:        a.PharmacyID,
		CustomerID:        a.CustomerID,
		Status:            string(a.Status),
		StatusLabel:       a.Status.Label(),
		VerificationCode:  a.VerificationCode,
		SupplierName:      a.SupplierName,
		EstimatedDelivery: a.EstimatedDelivery,
		Total:             a.EstimatedTotal(),
		Subtotal:          a.EstimatedTotal(),
		CreatedAt:         a.CreatedAt,
	}
	for _, item := range a.Items {
		s.Lines = append(s.Lines, Line{
			Name:      item.MedicineName,
			Quantity:  item.QuantityRequested,
			UnitPrice: item.EstimatedPrice.Div(decimal.NewFromInt(int64(max(item.QuantityRequested, 1)))),
			Total:     item.EstimatedPrice,
		})
	}
	return s
}

// Reference is the short, human friendly order number.
func (s Subject) Reference() string {
	return strings.ToUpper(s.ID.String()[:8])
}

// DisplayStatus renders the status the way customers read it.
func (s Subject) DisplayStatus() string {
	return s.StatusLabel
}

func (s Subject) statusEvent() enums.NotificationEvent {
	if s.Kind == KindAdvance {
		return enums.NotificationEventAdvanceOrderStatusUpdate
	}
	return enums.NotificationEventOrderStatusUpdate
}

func (s Subject) link(n *models.Notification) {
	id := s.ID
	if s.Kind == KindAdvance {
		n.AdvanceOrderID = &id
		return
	}
	n.OrderID = &id
}
