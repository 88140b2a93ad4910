package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// Order is the persisted result of one checkout.
type Order struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID       uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	PharmacyID       uuid.UUID               `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	PrescriptionID   *uuid.UUID              `gorm:"column:prescription_id;type:uuid"`
	Status           enums.OrderStatus       `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod     `gorm:"column:payment_method;not null"`
	PaymentStatus    enums.PaymentStatus     `gorm:"column:payment_status;not null;default:'pending'"`
	DeliveryMethod   enums.DeliveryMethod    `gorm:"column:delivery_method;not null"`
	DeliveryAddress  string                  `gorm:"column:delivery_address"`
	DeliveryEmail    string                  `gorm:"column:delivery_email"`
	PhoneNumber      string                  `gorm:"column:phone_number"`
	Notes            string                  `gorm:"column:notes"`
	Subtotal         decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryCharges  decimal.Decimal         `gorm:"column:delivery_charges;type:numeric(12,2);not null"`
	TotalAmount      decimal.Decimal         `gorm:"column:total_amount;type:numeric(12,2);not null"`
	VerificationCode string                  `gorm:"column:verification_code;not null"`
	IsVerified       bool                    `gorm:"column:is_verified;not null;default:false"`
	VerifiedAt       *time.Time              `gorm:"column:verified_at"`
	IsAdvanceOrder   bool                    `gorm:"column:is_advance_order;not null;default:false"`
	AdvanceOrderType *enums.AdvanceOrderType `gorm:"column:advance_order_type"`
	GatewayOrderID   *string                 `gorm:"column:gateway_order_id;uniqueIndex:idx_orders_gateway_order"`
	GatewayPaymentID *string                 `gorm:"column:gateway_payment_id"`
	Items            []OrderItem             `gorm:"foreignKey:OrderID"`
	AdvanceOrder     *AdvanceOrder           `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// RecalculateTotals recomputes subtotal and total from the loaded items.
func (o *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice())
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.DeliveryCharges)
}

// OrderItem freezes the unit price at the time the order was placed.
type OrderItem struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID                uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MedicineID             uuid.UUID       `gorm:"column:medicine_id;type:uuid;not null"`
	MedicineName           string          `gorm:"column:medicine_name;not null"`
	Quantity               int             `gorm:"column:quantity;not null"`
	UnitPrice              decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	IsAdvanceOrder         bool            `gorm:"column:is_advance_order;not null;default:false"`
	PrescriptionMedicineID *uuid.UUID      `gorm:"column:prescription_medicine_id;type:uuid"`
	Position               int             `gorm:"column:position;not null;default:0"`
	CreatedAt              time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
