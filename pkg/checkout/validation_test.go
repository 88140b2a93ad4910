package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

func TestValidateDelivery_HomeDeliveryNeedsAddress(t *testing.T) {
	_, err := ValidateDelivery(DeliveryInput{DeliveryMethod: "home_delivery", DeliveryAddress: "   ", PaymentMethod: "cod"})
	if err == nil {
		t.Fatal("expected missing address to fail")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := ValidateDelivery(DeliveryInput{DeliveryMethod: "pickup", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("pickup without address should pass: %v", err)
	}
	if got.DeliveryMethod != enums.DeliveryMethodPickup || got.PaymentMethod != enums.PaymentMethodCard {
		t.Fatalf("unexpected parse result %+v", got)
	}
}

func TestValidateDelivery_RejectsUnknownEnums(t *testing.T) {
	cases := []DeliveryInput{
		{DeliveryMethod: "drone", PaymentMethod: "cod"},
		{DeliveryMethod: "pickup", PaymentMethod: "barter"},
	}
	for _, tc := range cases {
		if _, err := ValidateDelivery(tc); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
	}
}

func TestComputeTotals(t *testing.T) {
	lines := []PricedLine{
		{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("15.00"), Quantity: 1},
	}
	fee := decimal.NewFromInt(50)

	pickup := ComputeTotals(lines, enums.DeliveryMethodPickup, fee)
	if !pickup.Total.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("expected pickup total 35.00, got %s", pickup.Total)
	}
	if !pickup.DeliveryCharges.IsZero() {
		t.Fatalf("pickup should not carry delivery charges, got %s", pickup.DeliveryCharges)
	}

	home := ComputeTotals(lines, enums.DeliveryMethodHomeDelivery, fee)
	if !home.Total.Equal(decimal.RequireFromString("85.00")) {
		t.Fatalf("expected home delivery total 85.00, got %s", home.Total)
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits(decimal.RequireFromString("85.50")); got != 8550 {
		t.Fatalf("expected 8550 paise, got %d", got)
	}
}
