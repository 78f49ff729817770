package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfileRepository implements identity.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Create inserts a new profile
func (r *GormProfileRepository) Create(ctx context.Context, p *identity.Profile) error {
	return translate(r.db.WithContext(ctx).Create(models.ProfileModelFromDomain(p)).Error)
}

// Update persists profile fields if the version is unchanged and bumps it
func (r *GormProfileRepository) Update(ctx context.Context, p *identity.Profile) error {
	p.Touch()
	result := r.db.WithContext(ctx).Model(&models.ProfileModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"username":       p.Username,
			"full_name":      p.FullName,
			"avatar_url":     p.AvatarURL,
			"phone":          p.Phone,
			"password_hash":  p.PasswordHash,
			"wallet_balance": p.WalletBalance,
			"rating":         p.Rating,
			"role":           p.Role,
			"status":         p.Status,
			"updated_at":     p.UpdatedAt,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	p.IncrementVersion()
	return nil
}

// FindByID finds a profile by its ID
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDForUpdate loads the profile and locks its row until the transaction ends
func (r *GormProfileRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// FindByIDs loads several profiles keyed by ID; unknown IDs are skipped
func (r *GormProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.Profile, error) {
	out := make(map[uuid.UUID]*identity.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ProfileModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByEmail finds a profile by its lowercase email
func (r *GormProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// ExistsByEmail reports whether an account uses the email
func (r *GormProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProfileModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// ExistsByUsername reports whether another account uses the username
func (r *GormProfileRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.ProfileModel{}).Where("LOWER(username) = ?", strings.ToLower(username))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *GormProfileRepository) first(q *gorm.DB, cond string, args ...any) (*identity.Profile, error) {
	var m models.ProfileModel
	if err := q.Where(cond, args...).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

var _ identity.ProfileRepository = (*GormProfileRepository)(nil)
