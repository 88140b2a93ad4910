package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

// Contact is a resolved notification recipient.
type Contact struct {
	UserID *uuid.UUID
	Name   string
	Email  string
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListPharmacyMembers(ctx context.Context, pharmacyID uuid.UUID) ([]models.User, error)
}

type pharmacyStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error)
}

// Directory resolves who should hear about an order or prescription.
type Directory struct {
	users      userStore
	pharmacies pharmacyStore
}

func NewDirectory(users userStore, pharmacies pharmacyStore) (*Directory, error) {
	if users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if pharmacies == nil {
		return nil, fmt.Errorf("pharmacy store required")
	}
	return &Directory{users: users, pharmacies: pharmacies}, nil
}

// Customer returns the contact for a customer account.
func (d *Directory) Customer(ctx context.Context, userID uuid.UUID) (Contact, error) {
	u, err := d.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Contact{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return Contact{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	id := u.ID
	return Contact{UserID: &id, Name: u.FullName, Email: u.Email}, nil
}

// PharmacyTeam returns the pharmacy's own mailbox followed by its active
// owner and staff. Blank addresses are dropped.
func (d *Directory) PharmacyTeam(ctx context.Context, pharmacyID uuid.UUID) (string, []Contact, error) {
	p, err := d.pharmacies.FindByID(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, pkgerrors.New(pkgerrors.CodeNotFound, "pharmacy not found")
		}
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pharmacy")
	}
	members, err := d.users.ListPharmacyMembers(ctx, pharmacyID)
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pharmacy members")
	}

	contacts := make([]Contact, 0, len(members)+1)
	if email := strings.TrimSpace(p.Email); email != "" {
		contacts = append(contacts, Contact{Name: p.Name, Email: email})
	}
	for _, m := range members {
		if strings.TrimSpace(m.Email) == "" {
			continue
		}
		id := m.ID
		contacts = append(contacts, Contact{UserID: &id, Name: m.FullName, Email: m.Email})
	}
	return p.Name, contacts, nil
}
