package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	shared.Filter
	Type *TransactionType
}

// TransactionRepository defines persistence for wallet transactions
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]*Transaction, int64, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Transaction, error)
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*Transaction, error)
}
