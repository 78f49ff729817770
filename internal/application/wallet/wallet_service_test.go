package wallet

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/application/txscope"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/internal/infrastructure/persistence"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	identity.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type walletFixture struct {
	svc      *WalletService
	profiles *persistence.GormProfileRepository
	user     *identity.Profile
}

func newWalletFixture(t *testing.T, balance int64) *walletFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	profiles := persistence.NewGormProfileRepository(db)

	user, err := identity.NewProfile("wallet@example.com", "password123", "wallet_user", "Wallet User")
	require.NoError(t, err)
	user.WalletBalance = decimal.NewFromInt(balance)
	require.NoError(t, profiles.Create(context.Background(), user))

	svc := NewWalletService(
		profiles,
		persistence.NewGormTransactionRepository(db),
		persistence.NewGormTransactionScope(db, nil),
		zap.NewNop(),
	)
	return &walletFixture{svc: svc, profiles: profiles, user: user}
}

func TestWalletService_Deposit(t *testing.T) {
	f := newWalletFixture(t, 10)
	ctx := context.Background()

	resp, err := f.svc.Deposit(ctx, f.user.ID, DepositInput{Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)
	assert.Equal(t, "DEPOSIT", resp.Type)
	assert.True(t, resp.BalanceBefore.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(50)))

	balance, err := f.svc.GetBalance(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(50)))
}

func TestWalletService_Deposit_Idempotent(t *testing.T) {
	f := newWalletFixture(t, 0)
	ctx := context.Background()
	input := DepositInput{Amount: decimal.NewFromInt(25), IdempotencyKey: "req-1"}

	first, err := f.svc.Deposit(ctx, f.user.ID, input)
	require.NoError(t, err)
	second, err := f.svc.Deposit(ctx, f.user.ID, input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	balance, err := f.svc.GetBalance(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(25)), "second call must not credit again")
}

func TestWalletService_Deposit_Validation(t *testing.T) {
	f := newWalletFixture(t, 0)
	ctx := context.Background()

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"zero", decimal.Zero},
		{"negative", decimal.NewFromInt(-5)},
		{"over limit", MaxDepositAmount.Add(decimal.NewFromInt(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Deposit(ctx, f.user.ID, DepositInput{Amount: tt.amount})
			assert.Equal(t, "INVALID_AMOUNT", shared.ErrorCode(err))
		})
	}
}

func TestWalletService_Withdraw(t *testing.T) {
	f := newWalletFixture(t, 30)
	ctx := context.Background()

	_, err := f.svc.Withdraw(ctx, f.user.ID, WithdrawInput{Amount: decimal.NewFromInt(50)})
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

	resp, err := f.svc.Withdraw(ctx, f.user.ID, WithdrawInput{Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)
	assert.True(t, resp.BalanceAfter.IsZero())

	stored, err := f.profiles.FindByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, stored.WalletBalance.IsZero())
}

func TestWalletService_ListTransactions(t *testing.T) {
	f := newWalletFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.Deposit(ctx, f.user.ID, DepositInput{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = f.svc.Withdraw(ctx, f.user.ID, WithdrawInput{Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	all, err := f.svc.ListTransactions(ctx, f.user.ID, ListTransactionsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	deposits, err := f.svc.ListTransactions(ctx, f.user.ID, ListTransactionsInput{Type: "deposit"})
	require.NoError(t, err)
	require.Len(t, deposits.Items, 1)
	assert.Equal(t, string(wallet.TransactionTypeDeposit), deposits.Items[0].Type)

	_, err = f.svc.ListTransactions(ctx, f.user.ID, ListTransactionsInput{Type: "bogus"})
	assert.Equal(t, "INVALID_TRANSACTION_TYPE", shared.ErrorCode(err))
}

func TestWalletService_UnknownUser(t *testing.T) {
	f := newWalletFixture(t, 0)

	_, err := f.svc.GetBalance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, identity.ErrProfileNotFound)

	_, err = f.svc.Deposit(context.Background(), uuid.New(), DepositInput{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, identity.ErrProfileNotFound)
}

// staleKeyScope hides committed idempotency keys from lookups inside the
// transaction, as seen by a deposit that read before a concurrent one with
// the same key committed.
type staleKeyScope struct{ inner txscope.TransactionScope }

func (s staleKeyScope) Execute(ctx context.Context, fn func(txscope.Repositories) error) error {
	return s.inner.Execute(ctx, func(repos txscope.Repositories) error {
		return fn(staleKeyRepos{repos})
	})
}

type staleKeyRepos struct{ txscope.Repositories }

func (r staleKeyRepos) Transactions() wallet.TransactionRepository {
	return staleKeyTransactions{r.Repositories.Transactions()}
}

type staleKeyTransactions struct{ wallet.TransactionRepository }

func (staleKeyTransactions) FindByIdempotencyKey(context.Context, uuid.UUID, string) (*wallet.Transaction, error) {
	return nil, shared.ErrNotFound
}

func TestWalletService_Deposit_IdempotentWhenKeyCommitsConcurrently(t *testing.T) {
	f := newWalletFixture(t, 0)
	ctx := context.Background()
	input := DepositInput{Amount: decimal.NewFromInt(30), IdempotencyKey: "topup-7"}

	first, err := f.svc.Deposit(ctx, f.user.ID, input)
	require.NoError(t, err)

	f.svc.txScope = staleKeyScope{f.svc.txScope}
	second, err := f.svc.Deposit(ctx, f.user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	balance, err := f.svc.GetBalance(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(30)), "losing insert must roll back its credit")

	// a different key is unaffected by the fallback
	_, err = f.svc.Deposit(ctx, f.user.ID, DepositInput{Amount: decimal.NewFromInt(5), IdempotencyKey: "topup-8"})
	require.NoError(t, err)
}
