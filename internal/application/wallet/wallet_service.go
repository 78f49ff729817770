// Package wallet applies balance movements together with their transaction records.
package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/application/txscope"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxDepositAmount bounds a single top-up
var MaxDepositAmount = decimal.NewFromInt(100000)

// WalletService exposes balance, deposits, withdrawals and history
type WalletService struct {
	profileRepo     identity.ProfileRepository
	transactionRepo wallet.TransactionRepository
	txScope         txscope.TransactionScope
	logger          *zap.Logger
}

// NewWalletService creates a new WalletService
func NewWalletService(
	profileRepo identity.ProfileRepository,
	transactionRepo wallet.TransactionRepository,
	txScope txscope.TransactionScope,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		profileRepo:     profileRepo,
		transactionRepo: transactionRepo,
		txScope:         txScope,
		logger:          logger,
	}
}

// GetBalance returns the user's wallet balance
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceResponse, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, err
	}
	return &BalanceResponse{UserID: profile.ID, Balance: profile.WalletBalance}, nil
}

// Deposit credits the wallet. A repeated idempotency key returns the first
// transaction without crediting again.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, input DepositInput) (*TransactionResponse, error) {
	if !input.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if input.Amount.GreaterThan(MaxDepositAmount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount exceeds the single deposit limit")
	}
	key := strings.TrimSpace(input.IdempotencyKey)

	var result *wallet.Transaction
	err := s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		if key != "" {
			existing, err := repos.Transactions().FindByIdempotencyKey(ctx, userID, key)
			if err == nil {
				result = existing
				return nil
			}
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}
		tx, err := Post(ctx, repos, Posting{
			UserID:         userID,
			Type:           wallet.TransactionTypeDeposit,
			Amount:         input.Amount,
			Description:    "Wallet deposit",
			IdempotencyKey: key,
		})
		if err != nil {
			return err
		}
		result = tx
		return nil
	})
	if err != nil && key != "" && errors.Is(err, shared.ErrAlreadyExists) {
		// A concurrent deposit with the same key committed between our
		// lookup and our insert; its record is the answer.
		if first, findErr := s.transactionRepo.FindByIdempotencyKey(ctx, userID, key); findErr == nil {
			result, err = first, nil
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Wallet deposit",
		zap.String("user_id", userID.String()),
		zap.String("amount", input.Amount.String()),
		zap.String("transaction_id", result.ID.String()),
	)
	resp := ToTransactionResponse(result)
	return &resp, nil
}

// Withdraw debits the wallet, failing with INSUFFICIENT_BALANCE when overdrawn
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, input WithdrawInput) (*TransactionResponse, error) {
	var result *wallet.Transaction
	err := s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		tx, err := Post(ctx, repos, Posting{
			UserID:      userID,
			Type:        wallet.TransactionTypeWithdrawal,
			Amount:      input.Amount,
			Description: "Wallet withdrawal",
		})
		result = tx
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Wallet withdrawal",
		zap.String("user_id", userID.String()),
		zap.String("amount", input.Amount.String()),
	)
	resp := ToTransactionResponse(result)
	return &resp, nil
}

// ListTransactions returns the user's history, newest first
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, input ListTransactionsInput) (shared.Paginated[TransactionResponse], error) {
	filter := wallet.TransactionFilter{
		Filter: shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize(),
	}
	if input.Type != "" {
		t := wallet.TransactionType(strings.ToUpper(input.Type))
		if !t.IsValid() {
			return shared.Paginated[TransactionResponse]{}, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Unknown transaction type")
		}
		filter.Type = &t
	}

	txs, total, err := s.transactionRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	items := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		items[i] = ToTransactionResponse(t)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
