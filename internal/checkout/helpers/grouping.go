package helpers

import (
	"github.com/angelmondragon/rxcart-backend/pkg/checkout"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
)

// SplitByFulfillment separates lines served from shelf stock from lines that
// must be procured through an advance order.
func SplitByFulfillment(items []models.CartItem) (inStock, advance []models.CartItem) {
	for _, item := range items {
		if item.IsAdvanceOrder {
			advance = append(advance, item)
			continue
		}
		inStock = append(inStock, item)
	}
	return inStock, advance
}

// PricedLines reads live medicine prices for every cart line.
func PricedLines(items []models.CartItem) []checkout.PricedLine {
	lines := make([]checkout.PricedLine, 0, len(items))
	for _, item := range items {
		if item.Medicine == nil {
			continue
		}
		lines = append(lines, checkout.PricedLine{UnitPrice: item.Medicine.Price, Quantity: item.Quantity})
	}
	return lines
}

// BuildOrderItems freezes the current unit price onto each order line. Lines
// keep the cart's order through Position.
func BuildOrderItems(items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for i, item := range items {
		out = append(out, models.OrderItem{
			MedicineID:             item.MedicineID,
			MedicineName:           item.Medicine.Name,
			Quantity:               item.Quantity,
			UnitPrice:              item.Medicine.Price,
			IsAdvanceOrder:         item.IsAdvanceOrder,
			PrescriptionMedicineID: item.PrescriptionMedicineID,
			Position:               i,
		})
	}
	return out
}

// BuildAdvanceItems estimates procurement cost as current price times quantity.
func BuildAdvanceItems(items []models.CartItem) []models.AdvanceOrderItem {
	out := make([]models.AdvanceOrderItem, 0, len(items))
	for i, item := range items {
		medicineID := item.MedicineID
		out = append(out, models.AdvanceOrderItem{
			MedicineID:        &medicineID,
			MedicineName:      item.Medicine.Name,
			Dosage:            item.Medicine.Strength,
			QuantityRequested: item.Quantity,
			EstimatedPrice:    item.LineTotal(),
			Position:          i,
		})
	}
	return out
}
