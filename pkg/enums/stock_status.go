package enums

import "fmt"

// StockStatus is derived from quantity and expiry; it is never persisted.
type StockStatus string

const (
	StockStatusInStock      StockStatus = "in_stock"
	StockStatusLow          StockStatus = "low"
	StockStatusOutOfStock   StockStatus = "out_of_stock"
	StockStatusExpiringSoon StockStatus = "expiring_soon"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLow,
	StockStatusOutOfStock,
	StockStatusExpiringSoon,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
