package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/catalog"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create inserts a category
func (r *GormCategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	return translate(r.db.WithContext(ctx).Create(models.CategoryModelFromDomain(c)).Error)
}

// FindAll lists categories in display order
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("sort_order ASC, code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByCode finds a category by its slug
func (r *GormCategoryRepository) FindByCode(ctx context.Context, code string) (*catalog.Category, error) {
	var m models.CategoryModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// ExistsByCode reports whether a category with the slug exists
func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// GormPickupLocationRepository implements catalog.PickupLocationRepository using GORM
type GormPickupLocationRepository struct {
	db *gorm.DB
}

// NewGormPickupLocationRepository creates a new GormPickupLocationRepository
func NewGormPickupLocationRepository(db *gorm.DB) *GormPickupLocationRepository {
	return &GormPickupLocationRepository{db: db}
}

// Create inserts a pickup location
func (r *GormPickupLocationRepository) Create(ctx context.Context, l *catalog.PickupLocation) error {
	return translate(r.db.WithContext(ctx).Create(models.PickupLocationModelFromDomain(l)).Error)
}

// Update saves all fields of a pickup location
func (r *GormPickupLocationRepository) Update(ctx context.Context, l *catalog.PickupLocation) error {
	result := r.db.WithContext(ctx).Model(&models.PickupLocationModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"name":       l.Name,
			"address":    l.Address,
			"is_active":  l.IsActive,
			"updated_at": l.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// FindByID finds a pickup location by its ID
func (r *GormPickupLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PickupLocation, error) {
	var m models.PickupLocationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists pickup locations by name
func (r *GormPickupLocationRepository) FindAll(ctx context.Context, activeOnly bool) ([]*catalog.PickupLocation, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.PickupLocationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.PickupLocation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ catalog.CategoryRepository       = (*GormCategoryRepository)(nil)
	_ catalog.PickupLocationRepository = (*GormPickupLocationRepository)(nil)
)
