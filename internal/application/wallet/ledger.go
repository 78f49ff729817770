package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/application/txscope"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// Posting describes one balance movement on a user's wallet
type Posting struct {
	UserID         uuid.UUID
	Type           wallet.TransactionType
	Amount         decimal.Decimal
	Description    string
	ReferenceID    *uuid.UUID
	IdempotencyKey string
}

// Post locks the user's profile, applies the movement and records the transaction.
// It must be called inside a transaction scope so the balance and its record commit together.
func Post(ctx context.Context, repos txscope.Repositories, p Posting) (*wallet.Transaction, error) {
	profile, err := repos.Profiles().FindByIDForUpdate(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("lock profile: %w", err)
	}

	var before, after decimal.Decimal
	if p.Type.IsIncrease() {
		before, after, err = profile.Credit(p.Amount)
	} else {
		before, after, err = profile.Debit(p.Amount)
	}
	if err != nil {
		return nil, err
	}

	tx, err := wallet.NewTransaction(p.UserID, p.Type, p.Amount, before, after, p.Description)
	if err != nil {
		return nil, err
	}
	if p.ReferenceID != nil {
		tx.WithReference(*p.ReferenceID)
	}
	tx.WithIdempotencyKey(p.IdempotencyKey)

	if err := repos.Profiles().Update(ctx, profile); err != nil {
		return nil, err
	}
	if err := repos.Transactions().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	return tx, nil
}
