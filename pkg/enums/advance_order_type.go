package enums

import "fmt"

type AdvanceOrderType string

const (
	AdvanceOrderTypePrescription AdvanceOrderType = "prescription"
	AdvanceOrderTypeRestock      AdvanceOrderType = "restock"
)

var validAdvanceOrderTypes = []AdvanceOrderType{
	AdvanceOrderTypePrescription,
	AdvanceOrderTypeRestock,
}

// String implements fmt.Stringer.
func (a AdvanceOrderType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdvanceOrderType.
func (a AdvanceOrderType) IsValid() bool {
	for _, candidate := range validAdvanceOrderTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdvanceOrderType converts raw input into a AdvanceOrderType.
func ParseAdvanceOrderType(value string) (AdvanceOrderType, error) {
	for _, candidate := range validAdvanceOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid advance order type %q", value)
}
