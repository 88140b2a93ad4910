package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// User mirrors the identity record needed for notification routing.
// Pharmacy staff and owners carry the pharmacy they work for.
type User struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email      string         `gorm:"column:email;not null;uniqueIndex"`
	FullName   string         `gorm:"column:full_name;not null"`
	Phone      *string        `gorm:"column:phone"`
	Role       enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	PharmacyID *uuid.UUID     `gorm:"column:pharmacy_id;type:uuid;index"`
	IsActive   bool           `gorm:"column:is_active;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
