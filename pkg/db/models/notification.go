package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// Notification is the append-only audit row for one dispatched message to one
// recipient. Only Status changes after insert.
type Notification struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	UserID         *uuid.UUID                `gorm:"column:user_id;type:uuid;index"`
	OrderID        *uuid.UUID                `gorm:"column:order_id;type:uuid;index"`
	AdvanceOrderID *uuid.UUID                `gorm:"column:advance_order_id;type:uuid"`
	PrescriptionID *uuid.UUID                `gorm:"column:prescription_id;type:uuid"`
	Channel        enums.NotificationChannel `gorm:"column:channel;not null;default:'email'"`
	Event          enums.NotificationEvent   `gorm:"column:event;not null"`
	Recipient      string                    `gorm:"column:recipient;not null"`
	Subject        string                    `gorm:"column:subject;not null"`
	Body           string                    `gorm:"column:body;not null"`
	Status         enums.NotificationStatus  `gorm:"column:status;not null;default:'pending'"`
	Attempts       int                       `gorm:"column:attempts;not null;default:0"`
	ErrorMessage   *string                   `gorm:"column:error_message"`
	SentAt         *time.Time                `gorm:"column:sent_at"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	return nil
}
