package models

import (
	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for wallet transactions.
// Rows are insert-only.
type TransactionModel struct {
	BaseModel
	UserID         uuid.UUID              `gorm:"type:uuid;not null;index:idx_transactions_user_created,priority:1;uniqueIndex:idx_transactions_idempotency,priority:1"`
	Type           wallet.TransactionType `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	BalanceBefore  decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	BalanceAfter   decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Description    string                 `gorm:"type:varchar(500)"`
	ReferenceID    *uuid.UUID             `gorm:"type:uuid;index"`
	IdempotencyKey *string                `gorm:"type:varchar(100);uniqueIndex:idx_transactions_idempotency,priority:2"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *wallet.Transaction {
	return &wallet.Transaction{
		BaseEntity:     m.Entity(),
		UserID:         m.UserID,
		Type:           m.Type,
		Amount:         m.Amount,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		Description:    m.Description,
		ReferenceID:    m.ReferenceID,
		IdempotencyKey: m.IdempotencyKey,
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *wallet.Transaction) *TransactionModel {
	m := &TransactionModel{
		UserID:         t.UserID,
		Type:           t.Type,
		Amount:         t.Amount,
		BalanceBefore:  t.BalanceBefore,
		BalanceAfter:   t.BalanceAfter,
		Description:    t.Description,
		ReferenceID:    t.ReferenceID,
		IdempotencyKey: t.IdempotencyKey,
	}
	m.SetEntity(t.BaseEntity)
	return m
}
