package orders

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/internal/notifications"
	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	pkgdb "github.com/angelmondragon/rxcart-backend/pkg/db"
	"github.com/angelmondragon/rxcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

type recordingNotifier struct {
	mu         sync.Mutex
	customer   []notifications.Subject
	pharmacy   []notifications.Subject
	customerOK bool
}

func (r *recordingNotifier) StatusUpdatedForCustomer(_ context.Context, s notifications.Subject) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customer = append(r.customer, s)
	return r.customerOK
}

func (r *recordingNotifier) StatusUpdatedForPharmacy(_ context.Context, s notifications.Subject) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pharmacy = append(r.pharmacy, s)
	return true
}

type orderFixture struct {
	svc      Service
	db       *gorm.DB
	notifier *recordingNotifier
	order    models.Order
	staff    auth.Actor
	customer auth.Actor
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	db := dbtest.New(t)
	pharmacy, owner := dbtest.SeedPharmacy(t, db)
	customer := dbtest.SeedUser(t, db, enums.UserRoleCustomer, nil)
	paracetamol := dbtest.SeedMedicine(t, db, pharmacy.ID, "Paracetamol", "15.00", 10)
	amoxicillin := dbtest.SeedMedicine(t, db, pharmacy.ID, "Amoxicillin", "20.00", 10)
	order := seedOrder(t, db, customer.ID, pharmacy.ID, map[*models.Medicine]int{&paracetamol: 2, &amoxicillin: 1})

	notifier := &recordingNotifier{customerOK: true}
	svc, err := NewService(NewRepository(db), pkgdb.Wrap(db), notifier, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	svc.(*service).dispatch = func(fn func()) { fn() }

	return orderFixture{
		svc:      svc,
		db:       db,
		notifier: notifier,
		order:    order,
		staff:    auth.Actor{UserID: owner.ID, Role: enums.UserRolePharmacyOwner, PharmacyID: &pharmacy.ID},
		customer: auth.Actor{UserID: customer.ID, Role: enums.UserRoleCustomer},
	}
}

func itemByName(t *testing.T, order models.Order, name string) models.OrderItem {
	t.Helper()
	for _, item := range order.Items {
		if item.MedicineName == name {
			return item
		}
	}
	t.Fatalf("item %s not found", name)
	return models.OrderItem{}
}

func TestUpdateStatusPersistsAndNotifiesBothSides(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	dto, err := f.svc.UpdateStatus(ctx, f.staff, f.order.ID, "out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusOutForDelivery, dto.Status)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, "id = ?", f.order.ID).Error)
	assert.Equal(t, enums.OrderStatusOutForDelivery, stored.Status)

	require.Len(t, f.notifier.customer, 1)
	require.Len(t, f.notifier.pharmacy, 1)
	assert.Equal(t, notifications.KindRegular, f.notifier.customer[0].Kind)
	assert.Equal(t, "Out For Delivery", f.notifier.customer[0].DisplayStatus())
}

func TestUpdateStatusAllowsArbitraryJumps(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.staff, f.order.ID, "delivered")
	require.NoError(t, err)
	dto, err := f.svc.UpdateStatus(ctx, f.staff, f.order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, dto.Status)
}

func TestUpdateStatusRejectsUnknownValueWithoutMutation(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.staff, f.order.ID, "shipped")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	var stored models.Order
	require.NoError(t, f.db.First(&stored, "id = ?", f.order.ID).Error)
	assert.Equal(t, enums.OrderStatusPending, stored.Status)
	assert.Empty(t, f.notifier.customer)
}

func TestUpdateStatusNotificationFailureDoesNotFail(t *testing.T) {
	f := newOrderFixture(t)
	f.notifier.customerOK = false

	_, err := f.svc.UpdateStatus(context.Background(), f.staff, f.order.ID, "ready")
	require.NoError(t, err)
	assert.Len(t, f.notifier.pharmacy, 1)
}

func TestUpdateStatusAccessControl(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.customer, f.order.ID, "ready")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	otherPharmacy := uuid.New()
	outsider := auth.Actor{UserID: uuid.New(), Role: enums.UserRolePharmacyStaff, PharmacyID: &otherPharmacy}
	_, err = f.svc.UpdateStatus(ctx, outsider, f.order.ID, "ready")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestItemMutationsKeepTotalsConsistent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	assert.Equal(t, "100", f.order.TotalAmount.String(), "2x15 + 1x20 + 50 delivery")

	paracetamol := itemByName(t, f.order, "Paracetamol")
	dto, err := f.svc.UpdateItemQuantity(ctx, f.staff, f.order.ID, paracetamol.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "80", dto.Subtotal.String())
	assert.Equal(t, "130", dto.TotalAmount.String())

	amoxicillin := itemByName(t, f.order, "Amoxicillin")
	dto, err = f.svc.RemoveItem(ctx, f.staff, f.order.ID, amoxicillin.ID)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "60", dto.Subtotal.String())
	assert.Equal(t, "110", dto.TotalAmount.String())

	var stored models.Order
	require.NoError(t, f.db.Preload("Items").First(&stored, "id = ?", f.order.ID).Error)
	require.Len(t, stored.Items, 1)
	sum := stored.Items[0].TotalPrice()
	assert.True(t, stored.Subtotal.Equal(sum))
	assert.True(t, stored.TotalAmount.Equal(stored.Subtotal.Add(stored.DeliveryCharges)))
}

func TestItemMutationValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	item := f.order.Items[0]

	_, err := f.svc.UpdateItemQuantity(ctx, f.staff, f.order.ID, item.ID, 0)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.RemoveItem(ctx, f.staff, f.order.ID, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.UpdateStatus(ctx, f.staff, f.order.ID, "cancelled")
	require.NoError(t, err)
	_, err = f.svc.UpdateItemQuantity(ctx, f.staff, f.order.ID, item.ID, 3)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestVerifyPickup(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifyPickup(ctx, f.staff, f.order.ID, "000000")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.VerifyPickup(ctx, f.staff, f.order.ID, " 123456 ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	dto, err := f.svc.VerifyPickup(ctx, f.staff, f.order.ID, "123456")
	require.NoError(t, err)
	assert.True(t, dto.IsVerified)

	_, err = f.svc.VerifyPickup(ctx, f.staff, f.order.ID, "123456")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestGetExposesCodeOnlyToCustomer(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	dto, err := f.svc.Get(ctx, f.customer, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456", dto.VerificationCode)

	dto, err = f.svc.Get(ctx, f.staff, f.order.ID)
	require.NoError(t, err)
	assert.Empty(t, dto.VerificationCode)

	stranger := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	_, err = f.svc.Get(ctx, stranger, f.order.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateAdvanceStatusSetsSupplierFields(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	advance := models.AdvanceOrder{
		OrderID:          f.order.ID,
		CustomerID:       f.order.CustomerID,
		PharmacyID:       f.order.PharmacyID,
		OrderType:        enums.AdvanceOrderTypeRestock,
		VerificationCode: "999999",
	}
	require.NoError(t, NewRepository(f.db).CreateAdvanceOrder(ctx, &advance))

	supplier := "  MedSupply Co "
	dto, err := f.svc.UpdateAdvanceStatus(ctx, f.staff, advance.ID, AdvanceStatusInput{Status: "ordered", SupplierName: &supplier})
	require.NoError(t, err)
	assert.Equal(t, enums.AdvanceOrderStatusOrdered, dto.Status)
	assert.Equal(t, "MedSupply Co", dto.SupplierName)
	require.Len(t, f.notifier.customer, 1)
	assert.Equal(t, notifications.KindAdvance, f.notifier.customer[0].Kind)

	_, err = f.svc.UpdateAdvanceStatus(ctx, f.staff, advance.ID, AdvanceStatusInput{Status: "lost"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListForPharmacyFiltersByStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	page, err := f.svc.ListForPharmacy(ctx, f.staff, "", 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	page, err = f.svc.ListForPharmacy(ctx, f.staff, "ready", 10, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.svc.ListForPharmacy(ctx, f.customer, "", 10, "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	mine, err := f.svc.ListForCustomer(ctx, f.customer.UserID, 10, "")
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "123456", mine.Items[0].VerificationCode)
}
