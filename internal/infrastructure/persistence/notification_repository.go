package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/notification"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts one or more notifications in a single statement
func (r *GormNotificationRepository) Create(ctx context.Context, ns ...*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	rows := make([]*models.NotificationModel, len(ns))
	for i, n := range ns {
		rows[i] = models.NotificationModelFromDomain(n)
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// Update saves the read flag
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{"is_read": n.IsRead, "updated_at": n.UpdatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var m models.NotificationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByUser lists the user's notifications, newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]*notification.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.NotificationModel
	if err := q.Scopes(paginate(filter)).Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*notification.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CountUnread counts the user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead flags every unread notification of the user and returns how many changed
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

// Delete removes a notification
func (r *GormNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.NotificationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
