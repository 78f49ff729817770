package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// BalanceResponse is the caller's current wallet balance
type BalanceResponse struct {
	UserID  uuid.UUID       `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse represents one wallet transaction
type TransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain transaction to its response
func ToTransactionResponse(t *wallet.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		Type:          t.Type.String(),
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Description:   t.Description,
		ReferenceID:   t.ReferenceID,
		CreatedAt:     t.CreatedAt,
	}
}

// DepositInput is a wallet top-up
type DepositInput struct {
	Amount         decimal.Decimal
	IdempotencyKey string
}

// WithdrawInput is a wallet withdrawal
type WithdrawInput struct {
	Amount decimal.Decimal
}

// ListTransactionsInput filters the transaction history
type ListTransactionsInput struct {
	Type     string
	Page     int
	PageSize int
}
