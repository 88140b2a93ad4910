package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	PharmacyID *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID      `json:"user_id"`
	Role       enums.UserRole `json:"role"`
	PharmacyID *uuid.UUID     `json:"pharmacy_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor is the caller identity resolved once per request. Pharmacy members
// always carry the pharmacy they act for; customers never do.
type Actor struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	PharmacyID *uuid.UUID
}

// Actor converts verified claims into the request actor.
func (c AccessTokenClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role, PharmacyID: c.PharmacyID}
}

// IsPharmacyMember reports whether the actor acts for a pharmacy.
func (a Actor) IsPharmacyMember() bool {
	return a.Role.IsPharmacyMember() && a.PharmacyID != nil
}

// MemberOf reports whether the actor is staff or owner of the pharmacy.
func (a Actor) MemberOf(pharmacyID uuid.UUID) bool {
	return a.IsPharmacyMember() && *a.PharmacyID == pharmacyID
}
