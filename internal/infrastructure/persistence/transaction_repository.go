package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements wallet.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create appends a transaction record
func (r *GormTransactionRepository) Create(ctx context.Context, tx *wallet.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(tx)).Error)
}

// FindByUser lists the user's transactions, newest first
func (r *GormTransactionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Where("user_id = ?", userID)
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.TransactionModel
	if err := q.Scopes(paginate(filter.Filter)).Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return transactionsToDomain(rows), total, nil
}

// FindByIdempotencyKey returns the transaction a client already submitted under key
func (r *GormTransactionRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*wallet.Transaction, error) {
	var m models.TransactionModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByReference lists transactions tied to a group buy, oldest first
func (r *GormTransactionRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*wallet.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).Where("reference_id = ?", referenceID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return transactionsToDomain(rows), nil
}

func transactionsToDomain(rows []models.TransactionModel) []*wallet.Transaction {
	out := make([]*wallet.Transaction, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ wallet.TransactionRepository = (*GormTransactionRepository)(nil)
