package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the caller's persisted cart.
type Service interface {
	View(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error)
	UpdateItem(ctx context.Context, userID, medicineID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AddItemInput is one add-to-cart request.
type AddItemInput struct {
	MedicineID             uuid.UUID
	Quantity               int
	IsAdvanceOrder         bool
	PrescriptionMedicineID *uuid.UUID
}

type service struct {
	tx        txRunner
	repo      CartRepository
	medicines medicineLoader
}

// NewService builds the cart service.
func NewService(tx txRunner, repo CartRepository, medicines medicineLoader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("medicine loader required")
	}
	return &service{tx: tx, repo: repo, medicines: medicines}, nil
}

func (s *service) View(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.view(ctx, s.repo, cart)
}

// AddItem sums into an existing line for the same medicine. The advance flag
// of the latest call replaces the stored one.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error) {
	if input.MedicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	medicine, err := s.loadMedicine(ctx, input.MedicineID)
	if err != nil {
		return nil, err
	}

	var result *CartView
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := repo.ListItems(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
		if err := ensureSinglePharmacy(items, medicine); err != nil {
			return err
		}

		existing := findLine(items, medicine.ID)
		quantity := input.Quantity
		if existing != nil {
			quantity += existing.Quantity
		}
		if !input.IsAdvanceOrder && quantity > medicine.Quantity {
			return pkgerrors.InsufficientStock(medicine.Name, medicine.Quantity)
		}

		if existing == nil {
			item := &models.CartItem{
				CartID:                 cart.ID,
				MedicineID:             medicine.ID,
				Quantity:               quantity,
				IsAdvanceOrder:         input.IsAdvanceOrder,
				PrescriptionMedicineID: input.PrescriptionMedicineID,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
			}
		} else {
			existing.Quantity = quantity
			existing.IsAdvanceOrder = input.IsAdvanceOrder
			if input.PrescriptionMedicineID != nil {
				existing.PrescriptionMedicineID = input.PrescriptionMedicineID
			}
			if err := repo.UpdateItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		}

		result, err = s.view(ctx, repo, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItem sets an absolute quantity; zero or less removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, medicineID uuid.UUID, quantity int) (*CartView, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	var result *CartView
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, cart.ID, medicineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		if quantity <= 0 {
			if _, err := repo.DeleteItem(ctx, cart.ID, medicineID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
			}
		} else {
			if !item.IsAdvanceOrder {
				medicine, err := s.loadMedicine(ctx, medicineID)
				if err != nil {
					return err
				}
				if quantity > medicine.Quantity {
					return pkgerrors.InsufficientStock(medicine.Name, medicine.Quantity)
				}
			}
			item.Quantity = quantity
			if err := repo.UpdateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		}

		result, err = s.view(ctx, repo, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem is idempotent.
func (s *service) RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, err := s.repo.DeleteItem(ctx, cart.ID, medicineID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.view(ctx, s.repo, cart)
}

// Clear is idempotent.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) view(ctx context.Context, repo CartRepository, cart *models.Cart) (*CartView, error) {
	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	v := NewCartView(cart.ID, items)
	return &v, nil
}

func (s *service) loadMedicine(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	m, err := s.medicines.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine")
	}
	return m, nil
}

// ensureSinglePharmacy rejects a medicine from a different pharmacy than the
// lines already in the cart.
func ensureSinglePharmacy(items []models.CartItem, medicine *models.Medicine) error {
	for _, item := range items {
		if item.Medicine != nil && item.Medicine.PharmacyID != medicine.PharmacyID {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already holds medicines from another pharmacy").
				WithDetails(map[string]any{"pharmacy_id": item.Medicine.PharmacyID})
		}
	}
	return nil
}

func findLine(items []models.CartItem, medicineID uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].MedicineID == medicineID {
			return &items[i]
		}
	}
	return nil
}

// CartView is the cart with totals computed from live prices.
type CartView struct {
	ID          uuid.UUID       `json:"id"`
	Items       []LineView      `json:"items"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type LineView struct {
	MedicineID             uuid.UUID       `json:"medicine_id"`
	Name                   string          `json:"name"`
	PharmacyID             uuid.UUID       `json:"pharmacy_id"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	Quantity               int             `json:"quantity"`
	Available              int             `json:"available"`
	IsAdvanceOrder         bool            `json:"is_advance_order"`
	PrescriptionMedicineID *uuid.UUID      `json:"prescription_medicine_id,omitempty"`
	LineTotal              decimal.Decimal `json:"line_total"`
}

// NewCartView totals lines; ItemCount is the sum of quantities.
func NewCartView(cartID uuid.UUID, items []models.CartItem) CartView {
	v := CartView{ID: cartID, Items: make([]LineView, 0, len(items)), TotalAmount: decimal.Zero}
	for _, item := range items {
		line := LineView{
			MedicineID:             item.MedicineID,
			Quantity:               item.Quantity,
			IsAdvanceOrder:         item.IsAdvanceOrder,
			PrescriptionMedicineID: item.PrescriptionMedicineID,
			LineTotal:              item.LineTotal(),
		}
		if item.Medicine != nil {
			line.Name = item.Medicine.Name
			line.PharmacyID = item.Medicine.PharmacyID
			line.UnitPrice = item.Medicine.Price
			line.Available = item.Medicine.Quantity
		}
		v.Items = append(v.Items, line)
		v.ItemCount += item.Quantity
		v.TotalAmount = v.TotalAmount.Add(line.LineTotal)
	}
	return v
}
