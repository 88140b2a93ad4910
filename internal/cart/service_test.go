package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/internal/medicines"
	pkgdb "github.com/angelmondragon/rxcart-backend/pkg/db"
	"github.com/angelmondragon/rxcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

func newCartService(t *testing.T) (Service, *gorm.DB, uuid.UUID, uuid.UUID) {
	t.Helper()
	db := dbtest.New(t)
	pharmacy, _ := dbtest.SeedPharmacy(t, db)
	customer := dbtest.SeedUser(t, db, enums.UserRoleCustomer, nil)
	svc, err := NewService(pkgdb.Wrap(db), NewRepository(db), medicines.NewRepository(db))
	require.NoError(t, err)
	return svc, db, pharmacy.ID, customer.ID
}

func TestAddSameMedicineTwiceSumsQuantity(t *testing.T) {
	svc, db, pharmacyID, userID := newCartService(t)
	med := dbtest.SeedMedicine(t, db, pharmacyID, "Paracetamol", "15.00", 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 2})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 5, view.ItemCount)
	assert.Equal(t, "75", view.TotalAmount.String())

	var rows int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestAddRespectsLiveStockUnlessAdvance(t *testing.T) {
	svc, db, pharmacyID, userID := newCartService(t)
	med := dbtest.SeedMedicine(t, db, pharmacyID, "Insulin", "300.00", 2)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 3})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Equal(t, map[string]any{"available": 2}, typed.Details())

	view, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 3, IsAdvanceOrder: true})
	require.NoError(t, err)
	assert.True(t, view.Items[0].IsAdvanceOrder)

	// the latest call's flag wins
	_, err = svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 1})
	require.Error(t, err, "4 in-stock units exceed the 2 available")

	view, err = svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 1, IsAdvanceOrder: true})
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)
}

func TestAddAdvanceFlagIsLastWriteWins(t *testing.T) {
	svc, db, pharmacyID, userID := newCartService(t)
	med := dbtest.SeedMedicine(t, db, pharmacyID, "Cetirizine", "5.00", 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 1, IsAdvanceOrder: true})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 1})
	require.NoError(t, err)
	assert.False(t, view.Items[0].IsAdvanceOrder)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestAddRejectsMixedPharmacies(t *testing.T) {
	svc, db, pharmacyID, userID := newCartService(t)
	other, _ := dbtest.SeedPharmacy(t, db)
	first := dbtest.SeedMedicine(t, db, pharmacyID, "Paracetamol", "15.00", 10)
	second := dbtest.SeedMedicine(t, db, other.ID, "Ibuprofen", "8.00", 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: first.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, AddItemInput{MedicineID: second.ID, Quantity: 1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestAddValidatesInput(t *testing.T) {
	svc, _, _, userID := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: uuid.New(), Quantity: 0})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(ctx, userID, AddItemInput{MedicineID: uuid.New(), Quantity: 1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateItem(t *testing.T) {
	svc, db, pharmacyID, userID := newCartService(t)
	a := dbtest.SeedMedicine(t, db, pharmacyID, "Amoxicillin", "15.00", 4)
	b := dbtest.SeedMedicine(t, db, pharmacyID, "Cetirizine", "5.00", 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, AddItemInput{MedicineID: b.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, userID, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "35", view.TotalAmount.String())
	assert.Equal(t, 3, view.ItemCount)

	_, err = svc.UpdateItem(ctx, userID, a.ID, 5)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	view, err = svc.UpdateItem(ctx, userID, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, a.ID, view.Items[0].MedicineID)

	_, err = svc.UpdateItem(ctx, userID, b.ID, 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestRemoveAndClearAreIdempotent(t *testing.T) {
	svc, db, pharmacyID, userID := newCartService(t)
	med := dbtest.SeedMedicine(t, db, pharmacyID, "Paracetamol", "15.00", 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{MedicineID: med.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, userID, med.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	_, err = svc.RemoveItem(ctx, userID, med.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))
	require.NoError(t, svc.Clear(ctx, userID))

	view, err = svc.View(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.TotalAmount.IsZero())
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRepository(db)
	userID := uuid.New()

	first, err := repo.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
