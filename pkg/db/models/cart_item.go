package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem references a live medicine; prices are read at view and checkout time.
type CartItem struct {
	ID                     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CartID                 uuid.UUID  `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_medicine"`
	MedicineID             uuid.UUID  `gorm:"column:medicine_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_medicine"`
	Medicine               *Medicine  `gorm:"foreignKey:MedicineID"`
	Quantity               int        `gorm:"column:quantity;not null"`
	IsAdvanceOrder         bool       `gorm:"column:is_advance_order;not null;default:false"`
	PrescriptionMedicineID *uuid.UUID `gorm:"column:prescription_medicine_id;type:uuid"`
	CreatedAt              time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// LineTotal is quantity times the live medicine price.
func (c CartItem) LineTotal() decimal.Decimal {
	if c.Medicine == nil {
		return decimal.Zero
	}
	return c.Medicine.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
