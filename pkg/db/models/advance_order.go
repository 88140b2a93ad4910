package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// AdvanceOrder tracks procurement of backordered items from one checkout.
type AdvanceOrder struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID                `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CustomerID        uuid.UUID                `gorm:"column:customer_id;type:uuid;not null;index"`
	PharmacyID        uuid.UUID                `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	OrderType         enums.AdvanceOrderType   `gorm:"column:order_type;not null"`
	Status            enums.AdvanceOrderStatus `gorm:"column:status;not null;default:'pending'"`
	EstimatedDelivery *time.Time               `gorm:"column:estimated_delivery"`
	SupplierName      string                   `gorm:"column:supplier_name"`
	SupplierContact   string                   `gorm:"column:supplier_contact"`
	Notes             string                   `gorm:"column:notes"`
	VerificationCode  string                   `gorm:"column:verification_code;not null"`
	Items             []AdvanceOrderItem       `gorm:"foreignKey:AdvanceOrderID"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *AdvanceOrder) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// EstimatedTotal sums the estimated price of every requested item.
func (a AdvanceOrder) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range a.Items {
		total = total.Add(item.EstimatedPrice)
	}
	return total
}

type AdvanceOrderItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	AdvanceOrderID    uuid.UUID       `gorm:"column:advance_order_id;type:uuid;not null;index"`
	MedicineID        *uuid.UUID      `gorm:"column:medicine_id;type:uuid"`
	MedicineName      string          `gorm:"column:medicine_name;not null"`
	Dosage            string          `gorm:"column:dosage"`
	Frequency         string          `gorm:"column:frequency"`
	QuantityRequested int             `gorm:"column:quantity_requested;not null"`
	EstimatedPrice    decimal.Decimal `gorm:"column:estimated_price;type:numeric(12,2);not null"`
	Position          int             `gorm:"column:position;not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *AdvanceOrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
