package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// BaseModel holds the columns every table shares.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) SetEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the version column the repositories compare in
// UPDATE ... WHERE version = ? for profiles and group buys.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// Aggregate rebuilds the embedded root. Pending events are never persisted,
// so a loaded aggregate starts with none.
func (m *AggregateModel) Aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.Entity(), Version: m.Version}
}

func (m *AggregateModel) SetAggregate(a shared.BaseAggregateRoot) {
	m.SetEntity(a.BaseEntity)
	m.Version = a.Version
}

// All returns every model, parents before children, for AutoMigrate in tests.
func All() []any {
	return []any{
		&ProfileModel{},
		&CategoryModel{},
		&PickupLocationModel{},
		&GroupBuyModel{},
		&ParticipantModel{},
		&TransactionModel{},
		&MessageModel{},
		&NotificationModel{},
		&OutboxEntryModel{},
	}
}
