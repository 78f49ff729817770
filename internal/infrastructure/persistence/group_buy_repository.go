package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupBuyRepository implements groupbuy.GroupBuyRepository using GORM
type GormGroupBuyRepository struct {
	db *gorm.DB
}

// NewGormGroupBuyRepository creates a new GormGroupBuyRepository
func NewGormGroupBuyRepository(db *gorm.DB) *GormGroupBuyRepository {
	return &GormGroupBuyRepository{db: db}
}

// Create inserts a new group buy
func (r *GormGroupBuyRepository) Create(ctx context.Context, g *groupbuy.GroupBuy) error {
	return translate(r.db.WithContext(ctx).Create(models.GroupBuyModelFromDomain(g)).Error)
}

// SaveWithLock persists the aggregate using optimistic locking.
// The row is only written if its version still equals g.Version.
func (r *GormGroupBuyRepository) SaveWithLock(ctx context.Context, g *groupbuy.GroupBuy) error {
	g.Touch()
	result := r.db.WithContext(ctx).Model(&models.GroupBuyModel{}).
		Where("id = ? AND version = ?", g.ID, g.Version).
		Updates(map[string]any{
			"title":                g.Title,
			"description":          g.Description,
			"category":             g.Category,
			"image_url":            g.ImageURL,
			"price":                g.Price,
			"original_price":       g.OriginalPrice,
			"current_participants": g.CurrentParticipants,
			"min_participants":     g.MinParticipants,
			"max_participants":     g.MaxParticipants,
			"location":             g.Location,
			"pickup_location_id":   g.PickupLocationID,
			"expires_at":           g.ExpiresAt,
			"status":               g.Status,
			"settled_at":           g.SettledAt,
			"updated_at":           g.UpdatedAt,
			"version":              gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	g.IncrementVersion()
	return nil
}

// FindByID finds a group buy by its ID
func (r *GormGroupBuyRepository) FindByID(ctx context.Context, id uuid.UUID) (*groupbuy.GroupBuy, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads the group buy and locks its row until the transaction ends
func (r *GormGroupBuyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*groupbuy.GroupBuy, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormGroupBuyRepository) first(q *gorm.DB, id uuid.UUID) (*groupbuy.GroupBuy, error) {
	var m models.GroupBuyModel
	if err := q.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads several group buys keyed by ID
func (r *GormGroupBuyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*groupbuy.GroupBuy, error) {
	out := make(map[uuid.UUID]*groupbuy.GroupBuy, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.GroupBuyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindOpen lists ACTIVE group buys whose deadline is now or later, newest first.
// filter.Query must already be lowercased.
func (r *GormGroupBuyRepository) FindOpen(ctx context.Context, filter groupbuy.ListFilter, now time.Time) ([]*groupbuy.GroupBuy, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.GroupBuyModel{}).
		Where("status = ? AND expires_at >= ?", groupbuy.StatusActive, now)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Query != "" {
		like := "%" + escapeLike(filter.Query) + "%"
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}
	return r.list(q, filter.Filter)
}

// FindByOrganizer lists every group buy the user organized, newest first
func (r *GormGroupBuyRepository) FindByOrganizer(ctx context.Context, organizerID uuid.UUID, filter shared.Filter) ([]*groupbuy.GroupBuy, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.GroupBuyModel{}).Where("organizer_id = ?", organizerID)
	return r.list(q, filter)
}

func (r *GormGroupBuyRepository) list(q *gorm.DB, filter shared.Filter) ([]*groupbuy.GroupBuy, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.GroupBuyModel
	if err := q.Scopes(paginate(filter)).Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*groupbuy.GroupBuy, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// FindDueForExpiry returns IDs of ACTIVE group buys whose deadline has passed, oldest deadline first
func (r *GormGroupBuyRepository) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.GroupBuyModel{}).
		Where("status = ? AND expires_at <= ?", groupbuy.StatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// FindIDsByStatus returns IDs of group buys in the given status, least recently updated first
func (r *GormGroupBuyRepository) FindIDsByStatus(ctx context.Context, status groupbuy.Status, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.GroupBuyModel{}).
		Where("status = ?", status).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// Exists reports whether the group buy exists
func (r *GormGroupBuyRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupBuyModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ groupbuy.GroupBuyRepository = (*GormGroupBuyRepository)(nil)
