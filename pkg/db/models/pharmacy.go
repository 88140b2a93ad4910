package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pharmacy is the tenant that owns inventory and fulfills orders.
type Pharmacy struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Name          string    `gorm:"column:name;not null"`
	Address       string    `gorm:"column:address;not null"`
	Phone         string    `gorm:"column:phone"`
	Email         string    `gorm:"column:email"`
	LicenseNumber string    `gorm:"column:license_number;not null"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Pharmacy) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
