package wallet

import (
	"strings"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of wallet movement
type TransactionType string

const (
	// TransactionTypeDeposit is money added by the user
	TransactionTypeDeposit TransactionType = "DEPOSIT"
	// TransactionTypePurchase is payment for joining a group buy
	TransactionTypePurchase TransactionType = "PURCHASE"
	// TransactionTypeRefund returns a purchase to the participant
	TransactionTypeRefund TransactionType = "REFUND"
	// TransactionTypeWithdrawal is money taken out by the user
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	// TransactionTypeSettlement pays the organizer once a group buy settles
	TransactionTypeSettlement TransactionType = "SETTLEMENT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit,
		TransactionTypePurchase,
		TransactionTypeRefund,
		TransactionTypeWithdrawal,
		TransactionTypeSettlement:
		return true
	}
	return false
}

// IsIncrease returns true if this type adds to the balance
func (t TransactionType) IsIncrease() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeRefund, TransactionTypeSettlement:
		return true
	}
	return false
}

// Transaction is an immutable record of a wallet balance change.
// Corrections are made with new transactions, never by editing old ones.
type Transaction struct {
	shared.BaseEntity
	UserID         uuid.UUID
	Type           TransactionType
	Amount         decimal.Decimal // always positive, direction comes from Type
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	Description    string
	ReferenceID    *uuid.UUID
	IdempotencyKey *string
}

// NewTransaction validates and creates a transaction record
func NewTransaction(
	userID uuid.UUID,
	txType TransactionType,
	amount, balanceBefore, balanceAfter decimal.Decimal,
	description string,
) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if balanceAfter.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance after cannot be negative")
	}

	expected := balanceBefore.Sub(amount)
	if txType.IsIncrease() {
		expected = balanceBefore.Add(amount)
	}
	if !expected.Equal(balanceAfter) {
		return nil, shared.NewDomainError("BALANCE_MISMATCH", "Balance after does not match amount")
	}

	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   strings.TrimSpace(description),
	}, nil
}

// WithReference links the transaction to a group buy
func (t *Transaction) WithReference(id uuid.UUID) *Transaction {
	t.ReferenceID = &id
	return t
}

// WithIdempotencyKey tags the transaction with a client supplied key
func (t *Transaction) WithIdempotencyKey(key string) *Transaction {
	if key = strings.TrimSpace(key); key != "" {
		t.IdempotencyKey = &key
	}
	return t
}

// SignedAmount returns the amount with the sign of its balance effect
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type.IsIncrease() {
		return t.Amount
	}
	return t.Amount.Neg()
}
