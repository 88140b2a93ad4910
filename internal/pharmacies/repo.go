package pharmacies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
)

// Repository handles pharmacy lookups.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to pharmacy operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a pharmacy by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error) {
	var p models.Pharmacy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
