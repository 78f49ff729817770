package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMessageRepository implements chat.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts a chat message
func (r *GormMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	return translate(r.db.WithContext(ctx).Create(models.MessageModelFromDomain(m)).Error)
}

// FindByGroupBuy returns up to limit messages oldest first.
// Without since it returns the latest page of the conversation.
func (r *GormMessageRepository) FindByGroupBuy(ctx context.Context, groupBuyID uuid.UUID, since *time.Time, limit int) ([]*chat.Message, error) {
	q := r.db.WithContext(ctx).Where("group_buy_id = ?", groupBuyID)

	var rows []models.MessageModel
	if since != nil {
		if err := q.Where("created_at > ?", *since).Order("created_at ASC, id ASC").Limit(limit).Find(&rows).Error; err != nil {
			return nil, err
		}
	} else {
		if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
			return nil, err
		}
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	out := make([]*chat.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ chat.MessageRepository = (*GormMessageRepository)(nil)
