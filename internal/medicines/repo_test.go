package medicines

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

func TestDecrementStock(t *testing.T) {
	db := dbtest.New(t)
	pharmacy, _ := dbtest.SeedPharmacy(t, db)
	med := dbtest.SeedMedicine(t, db, pharmacy.ID, "Amoxicillin", "12.00", 5)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.DecrementStock(ctx, med.ID, 3))
	got, err := repo.FindByID(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	err = repo.DecrementStock(ctx, med.ID, 3)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Equal(t, map[string]any{"available": 2}, typed.Details())

	got, err = repo.FindByID(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity, "failed decrement must not change stock")

	assert.True(t, pkgerrors.HasCode(repo.DecrementStock(ctx, uuid.New(), 1), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.HasCode(repo.DecrementStock(ctx, med.ID, 0), pkgerrors.CodeValidation))
}

func TestDecrementStockNeverOverdraws(t *testing.T) {
	db := dbtest.New(t)
	pharmacy, _ := dbtest.SeedPharmacy(t, db)
	med := dbtest.SeedMedicine(t, db, pharmacy.ID, "Insulin", "40.00", 3)
	repo := NewRepository(db)
	// sqlite shared cache reports lock errors for parallel writers
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DecrementStock(context.Background(), med.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(context.Background(), med.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, 3, succeeded)
}

func TestFindAvailableByName(t *testing.T) {
	db := dbtest.New(t)
	pharmacy, _ := dbtest.SeedPharmacy(t, db)
	ctx := context.Background()
	repo := NewRepository(db)

	empty := dbtest.SeedMedicine(t, db, pharmacy.ID, "Ibuprofen", "3.00", 0)
	stocked := dbtest.SeedMedicine(t, db, pharmacy.ID, "Brufen", "3.50", 20)
	require.NoError(t, db.Model(&stocked).Update("generic_name", "Ibuprofen").Error)

	m, err := repo.FindAvailableByExactName(ctx, "IBUPROFEN")
	require.NoError(t, err)
	assert.Equal(t, stocked.ID, m.ID, "out of stock rows are skipped")
	assert.NotEqual(t, empty.ID, m.ID)

	m, err = repo.FindAvailableByNameContains(ctx, "prof")
	require.NoError(t, err)
	assert.Equal(t, stocked.ID, m.ID)

	_, err = repo.FindAvailableByExactName(ctx, "Ibu")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindAvailableByNameContains(ctx, "100%")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := dbtest.New(t)
	pharmacy, _ := dbtest.SeedPharmacy(t, db)
	other, _ := dbtest.SeedPharmacy(t, db)
	for _, name := range []string{"Cetirizine", "Loratadine", "Omeprazole"} {
		dbtest.SeedMedicine(t, db, pharmacy.ID, name, "5.00", 10)
	}
	dbtest.SeedMedicine(t, db, pharmacy.ID, "Empty", "5.00", 0)
	dbtest.SeedMedicine(t, db, other.ID, "Elsewhere", "5.00", 10)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	page, err := svc.List(ctx, ListFilter{PharmacyID: &pharmacy.ID, InStockOnly: true, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.NextCursor)

	page, err = svc.List(ctx, ListFilter{Search: "tadine"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Loratadine", page.Items[0].Name)

	_, err = svc.List(ctx, ListFilter{Cursor: "%%%"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
