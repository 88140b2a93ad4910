package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOutForDelivery, status)
	assert.Equal(t, "Out For Delivery", status.Label())

	_, err = ParseOrderStatus("shipped")
	require.Error(t, err)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Ready", OrderStatusReady.Label())
	assert.Equal(t, "Received", AdvanceOrderStatusReceived.Label())
	assert.Equal(t, "Before Meals", ReminderFrequencyBeforeMeals.Label())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusDelivered.IsTerminal())
}

func TestPrescriptionStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to PrescriptionStatus
		ok       bool
	}{
		{PrescriptionStatusUploaded, PrescriptionStatusProcessing, true},
		{PrescriptionStatusProcessing, PrescriptionStatusProcessed, true},
		{PrescriptionStatusProcessed, PrescriptionStatusVerified, true},
		{PrescriptionStatusProcessing, PrescriptionStatusFailed, true},
		{PrescriptionStatusProcessed, PrescriptionStatusUploaded, false},
		{PrescriptionStatusFailed, PrescriptionStatusProcessing, false},
		{PrescriptionStatusVerified, PrescriptionStatusProcessed, false},
		{PrescriptionStatusUploaded, PrescriptionStatusVerified, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUserRolePharmacyMember(t *testing.T) {
	assert.False(t, UserRoleCustomer.IsPharmacyMember())
	assert.True(t, UserRolePharmacyStaff.IsPharmacyMember())
	assert.True(t, UserRolePharmacyOwner.IsPharmacyMember())
	assert.False(t, UserRole("admin").IsValid())
}
