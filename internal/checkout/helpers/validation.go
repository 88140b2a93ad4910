package helpers

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

// ValidateCartItems rejects empty carts and lines whose medicine is gone.
func ValidateCartItems(items []models.CartItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, item := range items {
		if item.Medicine == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "medicine in cart no longer exists").
				WithDetails(map[string]any{"medicine_id": item.MedicineID})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line quantity must be positive").
				WithDetails(map[string]any{"medicine_id": item.MedicineID})
		}
	}
	return nil
}

// ResolvePharmacy picks the fulfilling pharmacy: the actor's own pharmacy
// when they are staff, otherwise the pharmacy of the first cart line. Every
// line must belong to it.
func ResolvePharmacy(actor auth.Actor, items []models.CartItem) (uuid.UUID, error) {
	var pharmacyID uuid.UUID
	switch {
	case actor.IsPharmacyMember():
		pharmacyID = *actor.PharmacyID
	case len(items) > 0 && items[0].Medicine != nil:
		pharmacyID = items[0].Medicine.PharmacyID
	default:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "could not determine pharmacy for order")
	}
	for _, item := range items {
		if item.Medicine != nil && item.Medicine.PharmacyID != pharmacyID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "cart contains medicines from another pharmacy").
				WithDetails(map[string]any{"pharmacy_id": item.Medicine.PharmacyID})
		}
	}
	return pharmacyID, nil
}
