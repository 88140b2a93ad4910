package reminders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// ReminderDTO is a customer's view of one scheduled reminder.
type ReminderDTO struct {
	ID           uuid.UUID               `json:"id"`
	OrderID      uuid.UUID               `json:"order_id"`
	MedicineID   uuid.UUID               `json:"medicine_id"`
	MedicineName string                  `json:"medicine_name"`
	Dosage       string                  `json:"dosage,omitempty"`
	Frequency    enums.ReminderFrequency `json:"frequency"`
	StartDate    time.Time               `json:"start_date"`
	EndDate      time.Time               `json:"end_date"`
	IsActive     bool                    `json:"is_active"`
	LastSentAt   *time.Time              `json:"last_sent_at,omitempty"`
}

func FromModel(r models.MedicineReminder) ReminderDTO {
	return ReminderDTO{
		ID:           r.ID,
		OrderID:      r.OrderID,
		MedicineID:   r.MedicineID,
		MedicineName: r.MedicineName,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		IsActive:     r.IsActive,
		LastSentAt:   r.LastSentAt,
	}
}
