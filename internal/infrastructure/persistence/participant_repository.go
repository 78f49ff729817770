package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormParticipantRepository implements groupbuy.ParticipantRepository using GORM
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository creates a new GormParticipantRepository
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// Create inserts a participation.
// A second holding participation of the same user maps to groupbuy.ErrAlreadyJoined.
func (r *GormParticipantRepository) Create(ctx context.Context, p *groupbuy.Participant) error {
	err := translate(r.db.WithContext(ctx).Create(models.ParticipantModelFromDomain(p)).Error)
	if errors.Is(err, shared.ErrAlreadyExists) {
		return groupbuy.ErrAlreadyJoined
	}
	return err
}

// Update saves the participation status
func (r *GormParticipantRepository) Update(ctx context.Context, p *groupbuy.Participant) error {
	result := r.db.WithContext(ctx).Model(&models.ParticipantModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":     p.Status,
			"updated_at": p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a participation by its ID
func (r *GormParticipantRepository) FindByID(ctx context.Context, id uuid.UUID) (*groupbuy.Participant, error) {
	var m models.ParticipantModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByGroupBuy lists participations ordered by join time, optionally restricted to statuses
func (r *GormParticipantRepository) FindByGroupBuy(ctx context.Context, groupBuyID uuid.UUID, statuses ...groupbuy.ParticipantStatus) ([]*groupbuy.Participant, error) {
	q := r.db.WithContext(ctx).Where("group_buy_id = ?", groupBuyID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var rows []models.ParticipantModel
	if err := q.Order("joined_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return participantsToDomain(rows), nil
}

// FindHolding returns the user's PENDING or CONFIRMED participation
func (r *GormParticipantRepository) FindHolding(ctx context.Context, groupBuyID, userID uuid.UUID) (*groupbuy.Participant, error) {
	var m models.ParticipantModel
	err := r.db.WithContext(ctx).
		Where("group_buy_id = ? AND user_id = ? AND status IN ?", groupBuyID, userID, groupbuy.HoldingParticipantStatuses).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByUser lists the user's participations, newest first
func (r *GormParticipantRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*groupbuy.Participant, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ParticipantModel{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ParticipantModel
	if err := q.Scopes(paginate(filter)).Order("joined_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return participantsToDomain(rows), total, nil
}

func participantsToDomain(rows []models.ParticipantModel) []*groupbuy.Participant {
	out := make([]*groupbuy.Participant, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ groupbuy.ParticipantRepository = (*GormParticipantRepository)(nil)
