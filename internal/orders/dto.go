package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// OrderDTO is the API shape of an order. The verification code is only
// included for the customer who owns it.
type OrderDTO struct {
	ID               uuid.UUID            `json:"id"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	PharmacyID       uuid.UUID            `json:"pharmacy_id"`
	PrescriptionID   *uuid.UUID           `json:"prescription_id,omitempty"`
	Status           enums.OrderStatus    `json:"status"`
	PaymentMethod    enums.PaymentMethod  `json:"payment_method"`
	PaymentStatus    enums.PaymentStatus  `json:"payment_status"`
	DeliveryMethod   enums.DeliveryMethod `json:"delivery_method"`
	DeliveryAddress  string               `json:"delivery_address,omitempty"`
	Subtotal         decimal.Decimal      `json:"subtotal"`
	DeliveryCharges  decimal.Decimal      `json:"delivery_charges"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	VerificationCode string               `json:"verification_code,omitempty"`
	IsVerified       bool                 `json:"is_verified"`
	IsAdvanceOrder   bool                 `json:"is_advance_order"`
	Items            []OrderItemDTO       `json:"items"`
	AdvanceOrder     *AdvanceOrderDTO     `json:"advance_order,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

type OrderItemDTO struct {
	ID             uuid.UUID       `json:"id"`
	MedicineID     uuid.UUID       `json:"medicine_id"`
	MedicineName   string          `json:"medicine_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	IsAdvanceOrder bool            `json:"is_advance_order"`
}

type AdvanceOrderDTO struct {
	ID                uuid.UUID                `json:"id"`
	OrderType         enums.AdvanceOrderType   `json:"order_type"`
	Status            enums.AdvanceOrderStatus `json:"status"`
	EstimatedDelivery *time.Time               `json:"estimated_delivery,omitempty"`
	SupplierName      string                   `json:"supplier_name,omitempty"`
	EstimatedTotal    decimal.Decimal          `json:"estimated_total"`
	Items             []AdvanceOrderItemDTO    `json:"items"`
}

type AdvanceOrderItemDTO struct {
	MedicineName      string          `json:"medicine_name"`
	QuantityRequested int             `json:"quantity_requested"`
	EstimatedPrice    decimal.Decimal `json:"estimated_price"`
}

// FromModel maps an order. includeCode controls whether the pickup code is exposed.
func FromModel(o models.Order, includeCode bool) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		PharmacyID:      o.PharmacyID,
		PrescriptionID:  o.PrescriptionID,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		DeliveryMethod:  o.DeliveryMethod,
		DeliveryAddress: o.DeliveryAddress,
		Subtotal:        o.Subtotal,
		DeliveryCharges: o.DeliveryCharges,
		TotalAmount:     o.TotalAmount,
		IsVerified:      o.IsVerified,
		IsAdvanceOrder:  o.IsAdvanceOrder,
		Items:           make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
	}
	if includeCode {
		dto.VerificationCode = o.VerificationCode
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:             item.ID,
			MedicineID:     item.MedicineID,
			MedicineName:   item.MedicineName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice(),
			IsAdvanceOrder: item.IsAdvanceOrder,
		})
	}
	if o.AdvanceOrder != nil {
		advance := AdvanceFromModel(*o.AdvanceOrder)
		dto.AdvanceOrder = &advance
	}
	return dto
}

func AdvanceFromModel(a models.AdvanceOrder) AdvanceOrderDTO {
	dto := AdvanceOrderDTO{
		ID:                a.ID,
		OrderType:         a.OrderType,
		Status:            a.Status,
		EstimatedDelivery: a.EstimatedDelivery,
		SupplierName:      a.SupplierName,
		EstimatedTotal:    a.EstimatedTotal(),
		Items:             make([]AdvanceOrderItemDTO, 0, len(a.Items)),
	}
	for _, item := range a.Items {
		dto.Items = append(dto.Items, AdvanceOrderItemDTO{
			MedicineName:      item.MedicineName,
			QuantityRequested: item.QuantityRequested,
			EstimatedPrice:    item.EstimatedPrice,
		})
	}
	return dto
}
