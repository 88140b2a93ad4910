package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

// DeliveryInput is the subset of a checkout form that decides fulfillment.
type DeliveryInput struct {
	DeliveryMethod  string
	DeliveryAddress string
	PaymentMethod   string
}

// ValidatedDelivery holds the parsed enum values.
type ValidatedDelivery struct {
	DeliveryMethod  enums.DeliveryMethod
	DeliveryAddress string
	PaymentMethod   enums.PaymentMethod
}

// ValidateDelivery parses the method fields and requires an address for home delivery.
func ValidateDelivery(input DeliveryInput) (ValidatedDelivery, error) {
	method, err := enums.ParseDeliveryMethod(strings.TrimSpace(input.DeliveryMethod))
	if err != nil {
		return ValidatedDelivery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery method")
	}
	payment, err := enums.ParsePaymentMethod(strings.TrimSpace(input.PaymentMethod))
	if err != nil {
		return ValidatedDelivery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	address := strings.TrimSpace(input.DeliveryAddress)
	if method == enums.DeliveryMethodHomeDelivery && address == "" {
		return ValidatedDelivery{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required for home delivery").
			WithDetails(map[string]any{"field": "delivery_address"})
	}
	return ValidatedDelivery{DeliveryMethod: method, DeliveryAddress: address, PaymentMethod: payment}, nil
}

// PricedLine is one priced cart line.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals are the money fields of an order.
type Totals struct {
	Subtotal        decimal.Decimal
	DeliveryCharges decimal.Decimal
	Total           decimal.Decimal
}

// ComputeTotals sums every line, advance lines included, and adds the
// delivery fee only for home delivery.
func ComputeTotals(lines []PricedLine, method enums.DeliveryMethod, deliveryFee decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	charges := decimal.Zero
	if method == enums.DeliveryMethodHomeDelivery {
		charges = deliveryFee
	}
	return Totals{
		Subtotal:        subtotal,
		DeliveryCharges: charges,
		Total:           subtotal.Add(charges),
	}
}

// MinorUnits converts an amount to the smallest currency unit (paise for INR).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
