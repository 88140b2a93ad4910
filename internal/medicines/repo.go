package medicines

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
)

// Repository defines the inventory persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Medicine, error)
	List(ctx context.Context, filter ListFilter) ([]models.Medicine, error)
	FindAvailableByExactName(ctx context.Context, name string) (*models.Medicine, error)
	FindAvailableByNameContains(ctx context.Context, term string) (*models.Medicine, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	SetQuantity(ctx context.Context, id uuid.UUID, qty int) error
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	PharmacyID  *uuid.UUID
	Search      string
	InStockOnly bool
	Limit       int
	Cursor      string
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a medicine repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var m models.Medicine
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Medicine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Medicine, error) {
	q := r.db.WithContext(ctx).Model(&models.Medicine{})
	if filter.PharmacyID != nil {
		q = q.Where("pharmacy_id = ?", *filter.PharmacyID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := likePattern(term)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(generic_name) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filter.InStockOnly {
		q = q.Where("quantity > 0")
	}
	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Medicine
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	return rows, err
}

// FindAvailableByExactName matches name or generic name case-insensitively
// among medicines with stock. The oldest row wins.
func (r *repository) FindAvailableByExactName(ctx context.Context, name string) (*models.Medicine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var m models.Medicine
	err := r.db.WithContext(ctx).
		Where("(LOWER(name) = ? OR LOWER(generic_name) = ?) AND quantity > 0", name, name).
		Order("created_at ASC").Order("id ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAvailableByNameContains is the substring fallback used by fuzzy matching.
func (r *repository) FindAvailableByNameContains(ctx context.Context, term string) (*models.Medicine, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, gorm.ErrRecordNotFound
	}
	pattern := likePattern(term)
	var m models.Medicine
	err := r.db.WithContext(ctx).
		Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(generic_name) LIKE ? ESCAPE '\\') AND quantity > 0", pattern, pattern).
		Order("created_at ASC").Order("id ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DecrementStock subtracts qty only if enough stock remains. The check and the
// write are one statement, so concurrent checkouts cannot overdraw.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	current, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return err
	}
	return pkgerrors.InsufficientStock(current.Name, current.Quantity)
}

func (r *repository) SetQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ?", id).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
