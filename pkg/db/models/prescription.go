package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// Prescription is an uploaded prescription image and its OCR outcome.
type Prescription struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID       uuid.UUID                `gorm:"column:customer_id;type:uuid;not null;index"`
	ImagePath        string                   `gorm:"column:image_path;not null"`
	ImageContentType string                   `gorm:"column:image_content_type;not null"`
	Status           enums.PrescriptionStatus `gorm:"column:status;not null;default:'uploaded'"`
	ExtractedText    string                   `gorm:"column:extracted_text"`
	FailureReason    *string                  `gorm:"column:failure_reason"`
	VerificationCode *string                  `gorm:"column:verification_code"`
	IsVerified       bool                     `gorm:"column:is_verified;not null;default:false"`
	VerifiedBy       *uuid.UUID               `gorm:"column:verified_by;type:uuid"`
	VerifiedAt       *time.Time               `gorm:"column:verified_at"`
	ProcessedAt      *time.Time               `gorm:"column:processed_at"`
	Medicines        []PrescriptionMedicine   `gorm:"foreignKey:PrescriptionID"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Prescription) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// PrescriptionMedicine is one candidate line parsed out of a prescription.
type PrescriptionMedicine struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	PrescriptionID    uuid.UUID  `gorm:"column:prescription_id;type:uuid;not null;index"`
	MedicineName      string     `gorm:"column:medicine_name;not null"`
	Dosage            string     `gorm:"column:dosage"`
	Frequency         string     `gorm:"column:frequency"`
	QuantityRequired  int        `gorm:"column:quantity_required;not null;default:1"`
	MatchedMedicineID *uuid.UUID `gorm:"column:matched_medicine_id;type:uuid"`
	MatchedMedicine   *Medicine  `gorm:"foreignKey:MatchedMedicineID"`
	IsAvailable       bool       `gorm:"column:is_available;not null;default:false"`
	Position          int        `gorm:"column:position;not null;default:0"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (p *PrescriptionMedicine) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
