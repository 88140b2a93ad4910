package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
)

// Repository persists medicine reminders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMany(ctx context.Context, rows []models.MedicineReminder) error
	ListCandidates(ctx context.Context, now time.Time, limit int) ([]models.MedicineReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.MedicineReminder, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateMany inserts reminders, skipping order items that already have one.
func (r *repository) CreateMany(ctx context.Context, rows []models.MedicineReminder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_item_id"}}, DoNothing: true}).
		Create(&rows).Error
}

// ListCandidates returns active reminders inside their window that have not
// been sent within the shortest schedule interval.
func (r *repository) ListCandidates(ctx context.Context, now time.Time, limit int) ([]models.MedicineReminder, error) {
	var rows []models.MedicineReminder
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("last_sent_at IS NULL OR last_sent_at <= ?", now.Add(-shortestInterval)).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MedicineReminder{}).
		Where("id = ?", id).
		Update("last_sent_at", at).Error
}

func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MedicineReminder{}).
		Where("is_active = ? AND end_date < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.MedicineReminder, error) {
	var rows []models.MedicineReminder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}
