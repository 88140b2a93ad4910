package medicines

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

func TestSetQuantity(t *testing.T) {
	db := dbtest.New(t)
	pharmacy, owner := dbtest.SeedPharmacy(t, db)
	other, _ := dbtest.SeedPharmacy(t, db)
	med := dbtest.SeedMedicine(t, db, pharmacy.ID, "Metformin", "8.00", 4)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	staff := auth.Actor{UserID: owner.ID, Role: enums.UserRolePharmacyOwner, PharmacyID: &pharmacy.ID}
	dto, err := svc.SetQuantity(ctx, staff, med.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, dto.Quantity)
	assert.Equal(t, enums.StockStatusInStock, dto.StockStatus)

	_, err = svc.SetQuantity(ctx, staff, med.ID, -1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	outsider := auth.Actor{UserID: uuid.New(), Role: enums.UserRolePharmacyStaff, PharmacyID: &other.ID}
	_, err = svc.SetQuantity(ctx, outsider, med.ID, 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	customer := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	_, err = svc.SetQuantity(ctx, customer, med.ID, 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	got, err := svc.Get(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Quantity)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
