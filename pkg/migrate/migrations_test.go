package migrate_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/rxcart-backend/pkg/db"
	"github.com/angelmondragon/rxcart-backend/pkg/migrate"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:migrate_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no %s migration found", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestValidateDir(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestDialect(t *testing.T) {
	d, err := migrate.Dialect(pkgdb.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	d, err = migrate.Dialect("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	_, err = migrate.Dialect("mysql")
	assert.Error(t, err)
}

func TestMedicinesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_medicines")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS medicines",
		"CHECK (quantity >= 0)",
		"CHECK (price >= 0)",
		"DROP TABLE IF EXISTS medicines",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_orders")
	for _, sub := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_gateway_order ON orders (gateway_order_id) WHERE gateway_order_id IS NOT NULL",
		"FOREIGN KEY (medicine_id) REFERENCES medicines(id) ON DELETE RESTRICT",
		"DROP TABLE IF EXISTS orders",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestUpAppliesOnSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, migrate.Run(ctx, db, pkgdb.DriverSQLite, "migrations", "up"))

	for _, table := range []string{
		"users", "pharmacies", "medicines", "prescriptions", "prescription_medicines",
		"carts", "cart_items", "orders", "order_items", "advance_orders",
		"advance_order_items", "notifications", "medicine_reminders",
	} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	for _, table := range []string{"prescription_medicines", "order_items", "advance_order_items"} {
		var n int
		err := db.QueryRowContext(ctx, "SELECT count(*) FROM pragma_table_info(?) WHERE name = 'position'", table).Scan(&n)
		require.NoError(t, err, table)
		assert.Equal(t, 1, n, "%s.position", table)
	}

	userID, pharmacyID, medicineID := uuid.NewString(), uuid.NewString(), uuid.NewString()
	_, err := db.ExecContext(ctx, "INSERT INTO users (id, email) VALUES (?, ?)", userID, "owner@example.com")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO pharmacies (id, owner_id, name) VALUES (?, ?, ?)", pharmacyID, userID, "Corner")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO medicines (id, pharmacy_id, name, price, quantity, expiry_date) VALUES (?, ?, ?, ?, ?, ?)",
		medicineID, pharmacyID, "Paracetamol", "2.50", 3, "2030-01-01 00:00:00")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "UPDATE medicines SET quantity = quantity - 4 WHERE id = ?", medicineID)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "CHECK"), err.Error())

	_, err = db.ExecContext(ctx, "INSERT INTO carts (id, user_id) VALUES (?, ?)", uuid.NewString(), userID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO carts (id, user_id) VALUES (?, ?)", uuid.NewString(), userID)
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, ""))

	require.NoError(t, migrate.Run(ctx, db, pkgdb.DriverSQLite, "migrations", "down-to", "0"))
	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'orders'").Scan(&count))
	assert.Zero(t, count)
}
