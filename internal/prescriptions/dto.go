package prescriptions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

type PrescriptionDTO struct {
	ID            uuid.UUID                 `json:"id"`
	CustomerID    uuid.UUID                 `json:"customer_id"`
	Status        enums.PrescriptionStatus  `json:"status"`
	ExtractedText string                    `json:"extracted_text,omitempty"`
	FailureReason *string                   `json:"failure_reason,omitempty"`
	IsVerified    bool                      `json:"is_verified"`
	VerifiedAt    *time.Time                `json:"verified_at,omitempty"`
	ProcessedAt   *time.Time                `json:"processed_at,omitempty"`
	Medicines     []PrescriptionMedicineDTO `json:"medicines"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type PrescriptionMedicineDTO struct {
	ID                uuid.UUID        `json:"id"`
	MedicineName      string           `json:"medicine_name"`
	Dosage            string           `json:"dosage,omitempty"`
	Frequency         string           `json:"frequency,omitempty"`
	QuantityRequired  int              `json:"quantity_required"`
	IsAvailable       bool             `json:"is_available"`
	MatchedMedicineID *uuid.UUID       `json:"matched_medicine_id,omitempty"`
	MatchedName       string           `json:"matched_name,omitempty"`
	MatchedPrice      *decimal.Decimal `json:"matched_price,omitempty"`
}

func FromModel(p models.Prescription) PrescriptionDTO {
	dto := PrescriptionDTO{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		Status:        p.Status,
		ExtractedText: p.ExtractedText,
		FailureReason: p.FailureReason,
		IsVerified:    p.IsVerified,
		VerifiedAt:    p.VerifiedAt,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
		Medicines:     make([]PrescriptionMedicineDTO, 0, len(p.Medicines)),
	}
	for _, m := range p.Medicines {
		item := PrescriptionMedicineDTO{
			ID:                m.ID,
			MedicineName:      m.MedicineName,
			Dosage:            m.Dosage,
			Frequency:         m.Frequency,
			QuantityRequired:  m.QuantityRequired,
			IsAvailable:       m.IsAvailable,
			MatchedMedicineID: m.MatchedMedicineID,
		}
		if m.MatchedMedicine != nil {
			price := m.MatchedMedicine.Price
			item.MatchedName = m.MatchedMedicine.Name
			item.MatchedPrice = &price
		}
		dto.Medicines = append(dto.Medicines, item)
	}
	return dto
}
