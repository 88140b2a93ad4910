package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// MedicineReminder schedules dose reminders for prescription-backed order lines.
type MedicineReminder struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID      uuid.UUID               `gorm:"column:order_id;type:uuid;not null"`
	OrderItemID  uuid.UUID               `gorm:"column:order_item_id;type:uuid;not null;uniqueIndex"`
	MedicineID   uuid.UUID               `gorm:"column:medicine_id;type:uuid;not null"`
	MedicineName string                  `gorm:"column:medicine_name;not null"`
	Dosage       string                  `gorm:"column:dosage"`
	Frequency    enums.ReminderFrequency `gorm:"column:frequency;not null"`
	StartDate    time.Time               `gorm:"column:start_date;not null"`
	EndDate      time.Time               `gorm:"column:end_date;not null"`
	IsActive     bool                    `gorm:"column:is_active;not null"`
	LastSentAt   *time.Time              `gorm:"column:last_sent_at"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (r *MedicineReminder) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
