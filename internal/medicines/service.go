package medicines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
)

// Service exposes catalog reads and the pharmacist stock edit.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*MedicineDTO, error)
	List(ctx context.Context, filter ListFilter) (pagination.Page[MedicineDTO], error)
	SetQuantity(ctx context.Context, actor auth.Actor, id uuid.UUID, qty int) (*MedicineDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the inventory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("medicine repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MedicineDTO, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*m, s.now())
	return &dto, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (pagination.Page[MedicineDTO], error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return pagination.Page[MedicineDTO]{}, err
		}
		return pagination.Page[MedicineDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list medicines")
	}
	page := pagination.BuildPage(rows, filter.Limit, func(m models.Medicine) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	now := s.now()
	items := make([]MedicineDTO, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, FromModel(m, now))
	}
	return pagination.Page[MedicineDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

// SetQuantity is the pharmacist's absolute stock edit for their own pharmacy.
func (s *service) SetQuantity(ctx context.Context, actor auth.Actor, id uuid.UUID, qty int) (*MedicineDTO, error) {
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or greater")
	}
	if !actor.IsPharmacyMember() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy access required")
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.MemberOf(m.PharmacyID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
	}
	if err := s.repo.SetQuantity(ctx, id, qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	m.Quantity = qty
	dto := FromModel(*m, s.now())
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine")
	}
	return m, nil
}
