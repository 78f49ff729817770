package persistence

import (
	"context"

	"github.com/groupbuy/backend/internal/application/txscope"
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/notification"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"gorm.io/gorm"
)

// GormTransactionScope implements txscope.TransactionScope using GORM transactions
type GormTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new GormTransactionScope.
// outboxSaver may be nil, in which case SaveEvents discards events.
func NewGormTransactionScope(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, outboxSaver: outboxSaver}
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txscope.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, outboxSaver: s.outboxSaver})
	})
}

type gormTransactionalRepositories struct {
	tx          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

func (r *gormTransactionalRepositories) GroupBuys() groupbuy.GroupBuyRepository {
	return NewGormGroupBuyRepository(r.tx)
}

func (r *gormTransactionalRepositories) Participants() groupbuy.ParticipantRepository {
	return NewGormParticipantRepository(r.tx)
}

func (r *gormTransactionalRepositories) Profiles() identity.ProfileRepository {
	return NewGormProfileRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transactions() wallet.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Messages() chat.MessageRepository {
	return NewGormMessageRepository(r.tx)
}

func (r *gormTransactionalRepositories) Notifications() notification.Repository {
	return NewGormNotificationRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if r.outboxSaver == nil || len(events) == 0 {
		return nil
	}
	return r.outboxSaver.SaveEvents(ctx, r.tx, events...)
}

var (
	_ txscope.TransactionScope = (*GormTransactionScope)(nil)
	_ txscope.Repositories     = (*gormTransactionalRepositories)(nil)
)
