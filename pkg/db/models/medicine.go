package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// Medicine is a stocked inventory line owned by one pharmacy.
type Medicine struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	PharmacyID           uuid.UUID          `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	Name                 string             `gorm:"column:name;not null;index"`
	GenericName          string             `gorm:"column:generic_name"`
	Brand                string             `gorm:"column:brand"`
	MedicineType         enums.MedicineType `gorm:"column:medicine_type;not null;default:'tablet'"`
	Strength             string             `gorm:"column:strength"`
	Description          string             `gorm:"column:description"`
	Manufacturer         string             `gorm:"column:manufacturer"`
	Price                decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity             int                `gorm:"column:quantity;not null;default:0"`
	ExpiryDate           time.Time          `gorm:"column:expiry_date;not null"`
	BatchNumber          string             `gorm:"column:batch_number"`
	IsEssential          bool               `gorm:"column:is_essential;not null;default:false"`
	RequiresPrescription bool               `gorm:"column:requires_prescription;not null;default:false"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Medicine) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
