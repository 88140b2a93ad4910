package prescriptions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rxcart-backend/internal/medicines"
	"github.com/angelmondragon/rxcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
)

func TestMatcherExactThenFuzzy(t *testing.T) {
	db := dbtest.New(t)
	pharmacy, _ := dbtest.SeedPharmacy(t, db)
	paracetamol := dbtest.SeedMedicine(t, db, pharmacy.ID, "Paracetamol", "2.50", 10)
	calcium := dbtest.SeedMedicine(t, db, pharmacy.ID, "Shelcal Calcium", "6.00", 3)
	dbtest.SeedMedicine(t, db, pharmacy.ID, "Amoxicillin", "4.00", 0)

	matcher := NewMatcher(medicines.NewRepository(db))
	prescriptionID := uuid.New()
	rows, err := matcher.Match(context.Background(), prescriptionID, []Candidate{
		{Name: "PARACETAMOL", Dosage: "500mg", QuantityRequired: 1},
		{Name: "Calcium Carbonate", QuantityRequired: 7},
		{Name: "Amoxicillin", QuantityRequired: 21},
		{Name: "Unknownium", QuantityRequired: 1},
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.True(t, rows[0].IsAvailable)
	require.NotNil(t, rows[0].MatchedMedicineID)
	assert.Equal(t, paracetamol.ID, *rows[0].MatchedMedicineID)
	assert.Equal(t, prescriptionID, rows[0].PrescriptionID)

	assert.True(t, rows[1].IsAvailable)
	assert.Equal(t, calcium.ID, *rows[1].MatchedMedicineID)
	assert.Equal(t, 7, rows[1].QuantityRequired)

	assert.False(t, rows[2].IsAvailable, "out of stock medicine must not match")
	assert.Nil(t, rows[2].MatchedMedicineID)
	assert.False(t, rows[3].IsAvailable)
}

type brokenFinder struct{}

func (brokenFinder) FindAvailableByExactName(context.Context, string) (*models.Medicine, error) {
	return nil, errors.New("connection reset")
}

func (brokenFinder) FindAvailableByNameContains(context.Context, string) (*models.Medicine, error) {
	return nil, errors.New("connection reset")
}

func TestMatcherPropagatesLookupErrors(t *testing.T) {
	_, err := NewMatcher(brokenFinder{}).Match(context.Background(), uuid.New(), []Candidate{{Name: "Aspirin"}})
	require.Error(t, err)
}
