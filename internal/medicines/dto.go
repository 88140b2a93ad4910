package medicines

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// MedicineDTO is the catalog view of a medicine with its derived stock status.
type MedicineDTO struct {
	ID                   uuid.UUID          `json:"id"`
	PharmacyID           uuid.UUID          `json:"pharmacy_id"`
	Name                 string             `json:"name"`
	GenericName          string             `json:"generic_name,omitempty"`
	Brand                string             `json:"brand,omitempty"`
	MedicineType         enums.MedicineType `json:"medicine_type"`
	Strength             string             `json:"strength,omitempty"`
	Description          string             `json:"description,omitempty"`
	Manufacturer         string             `json:"manufacturer,omitempty"`
	Price                decimal.Decimal    `json:"price"`
	Quantity             int                `json:"quantity"`
	ExpiryDate           time.Time          `json:"expiry_date"`
	BatchNumber          string             `json:"batch_number,omitempty"`
	IsEssential          bool               `json:"is_essential"`
	RequiresPrescription bool               `json:"requires_prescription"`
	StockStatus          enums.StockStatus  `json:"stock_status"`
}

// FromModel builds the DTO, deriving stock status at now.
func FromModel(m models.Medicine, now time.Time) MedicineDTO {
	return MedicineDTO{
		ID:                   m.ID,
		PharmacyID:           m.PharmacyID,
		Name:                 m.Name,
		GenericName:          m.GenericName,
		Brand:                m.Brand,
		MedicineType:         m.MedicineType,
		Strength:             m.Strength,
		Description:          m.Description,
		Manufacturer:         m.Manufacturer,
		Price:                m.Price,
		Quantity:             m.Quantity,
		ExpiryDate:           m.ExpiryDate,
		BatchNumber:          m.BatchNumber,
		IsEssential:          m.IsEssential,
		RequiresPrescription: m.RequiresPrescription,
		StockStatus:          StockStatusOf(m, now),
	}
}
