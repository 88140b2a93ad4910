// Package dbtest opens isolated in-memory sqlite databases with the full
// schema for package tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// AllModels lists every persisted model in dependency order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Pharmacy{},
		&models.Medicine{},
		&models.Prescription{},
		&models.PrescriptionMedicine{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.AdvanceOrder{},
		&models.AdvanceOrderItem{},
		&models.Notification{},
		&models.MedicineReminder{},
	}
}

// New opens a uniquely named shared-cache sqlite database and migrates it.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:rx_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(AllModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// SeedUser inserts a user with the given role.
func SeedUser(t testing.TB, db *gorm.DB, role enums.UserRole, pharmacyID *uuid.UUID) models.User {
	t.Helper()
	u := models.User{
		Email:      uuid.NewString()[:8] + "@example.com",
		FullName:   "Test " + role.String(),
		Role:       role,
		PharmacyID: pharmacyID,
		IsActive:   true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPharmacy inserts a pharmacy and its owner account.
func SeedPharmacy(t testing.TB, db *gorm.DB) (models.Pharmacy, models.User) {
	t.Helper()
	id := uuid.New()
	owner := SeedUser(t, db, enums.UserRolePharmacyOwner, &id)
	p := models.Pharmacy{
		ID:       id,
		OwnerID:  owner.ID,
		Name:     "Pharmacy " + id.String()[:6],
		Email:    "store-" + id.String()[:6] + "@example.com",
		IsActive: true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed pharmacy: %v", err)
	}
	return p, owner
}

// SeedMedicine inserts a medicine expiring in a year.
func SeedMedicine(t testing.TB, db *gorm.DB, pharmacyID uuid.UUID, name, price string, qty int) models.Medicine {
	t.Helper()
	m := models.Medicine{
		PharmacyID:   pharmacyID,
		Name:         name,
		MedicineType: enums.MedicineTypeTablet,
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
		ExpiryDate:   time.Now().AddDate(1, 0, 0),
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return m
}

// SeedPrescription inserts a processed prescription with the given medicine lines.
func SeedPrescription(t testing.TB, db *gorm.DB, customerID uuid.UUID, lines ...models.PrescriptionMedicine) models.Prescription {
	t.Helper()
	p := models.Prescription{
		CustomerID:       customerID,
		ImagePath:        "prescriptions/" + customerID.String() + "/seed.png",
		ImageContentType: "image/png",
		Status:           enums.PrescriptionStatusProcessed,
		Medicines:        lines,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed prescription: %v", err)
	}
	return p
}
