package enums

import "fmt"

// UserRole describes how the authenticated actor relates to a pharmacy.
type UserRole string

const (
	UserRoleCustomer      UserRole = "customer"
	UserRolePharmacyStaff UserRole = "pharmacy_staff"
	UserRolePharmacyOwner UserRole = "pharmacy_owner"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRolePharmacyStaff,
	UserRolePharmacyOwner,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// IsPharmacyMember reports whether the role acts on behalf of a pharmacy.
func (u UserRole) IsPharmacyMember() bool {
	return u == UserRolePharmacyStaff || u == UserRolePharmacyOwner
}
