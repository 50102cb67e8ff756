package repositories

import (
	"context"

	"eloan-must/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type plafondRepository struct {
	db *gorm.DB
}

// NewPlafondRepository creates a new product repository
func NewPlafondRepository(db *gorm.DB) PlafondRepository {
	return &plafondRepository{db: db}
}

func (r *plafondRepository) Create(ctx context.Context, p *models.Plafond) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *plafondRepository) Update(ctx context.Context, p *models.Plafond) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *plafondRepository) GetByID(ctx context.Context, id uint) (*models.Plafond, error) {
	var p models.Plafond
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *plafondRepository) ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Plafond{}).Where("code = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ListActive lists active products ordered by minimum amount. Detection
// takes the first match in this order.
func (r *plafondRepository) ListActive(ctx context.Context) ([]*models.Plafond, error) {
	var ps []*models.Plafond
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("min_amount ASC, id ASC").
		Find(&ps).Error
	return ps, err
}

func (r *plafondRepository) ListAll(ctx context.Context) ([]*models.Plafond, error) {
	var ps []*models.Plafond
	err := r.db.WithContext(ctx).Order("min_amount ASC, id ASC").Find(&ps).Error
	return ps, err
}

func (r *plafondRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Plafond{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// Delete soft-deletes a product
func (r *plafondRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Plafond{}, id).Error
}
