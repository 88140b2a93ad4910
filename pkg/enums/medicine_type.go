package enums

import "fmt"

// MedicineType is the dosage form of a stocked medicine.
type MedicineType string

const (
	MedicineTypeTablet    MedicineType = "tablet"
	MedicineTypeCapsule   MedicineType = "capsule"
	MedicineTypeSyrup     MedicineType = "syrup"
	MedicineTypeInjection MedicineType = "injection"
	MedicineTypeCream     MedicineType = "cream"
	MedicineTypeDrops     MedicineType = "drops"
)

var validMedicineTypes = []MedicineType{
	MedicineTypeTablet,
	MedicineTypeCapsule,
	MedicineTypeSyrup,
	MedicineTypeInjection,
	MedicineTypeCream,
	MedicineTypeDrops,
}

// String implements fmt.Stringer.
func (m MedicineType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MedicineType.
func (m MedicineType) IsValid() bool {
	for _, candidate := range validMedicineTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMedicineType converts raw input into a MedicineType.
func ParseMedicineType(value string) (MedicineType, error) {
	for _, candidate := range validMedicineTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid medicine type %q", value)
}
