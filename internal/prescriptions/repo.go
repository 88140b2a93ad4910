package prescriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/internal/repo"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
)

// Repository persists prescriptions and their parsed medicine lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, p *models.Prescription) error
	Save(ctx context.Context, p *models.Prescription) error
	CreateMedicines(ctx context.Context, rows []models.PrescriptionMedicine) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Prescription, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) ([]models.Prescription, error)
	FindMedicinesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.PrescriptionMedicine, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, p *models.Prescription) error {
	return r.DB(ctx).Create(p).Error
}

func (r *repository) Save(ctx context.Context, p *models.Prescription) error {
	return r.DB(ctx).Omit("Medicines").Save(p).Error
}

func (r *repository) CreateMedicines(ctx context.Context, rows []models.PrescriptionMedicine) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Omit("MatchedMedicine").Create(&rows).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Prescription, error) {
	var p models.Prescription
	err := r.DB(ctx).
		Preload("Medicines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		Preload("Medicines.MatchedMedicine").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) ([]models.Prescription, error) {
	q := r.DB(ctx).Where("customer_id = ?", customerID)
	c, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if c != nil {
		q = q.Where("((created_at < ?) OR (created_at = ? AND id < ?))", c.CreatedAt, c.CreatedAt, c.ID)
	}
	var rows []models.Prescription
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindMedicinesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.PrescriptionMedicine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.PrescriptionMedicine
	err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}
