package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/catalog"
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/notification"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	user := createProfile(t, db, "saver", 0)
	ref := uuid.New()

	deposit, err := wallet.NewTransaction(user.ID, wallet.TransactionTypeDeposit,
		decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), "top up")
	require.NoError(t, err)
	deposit.WithIdempotencyKey("dep-1")
	require.NoError(t, repo.Create(ctx, deposit))

	purchase, err := wallet.NewTransaction(user.ID, wallet.TransactionTypePurchase,
		decimal.NewFromInt(30), decimal.NewFromInt(100), decimal.NewFromInt(70), "join")
	require.NoError(t, err)
	purchase.WithReference(ref)
	require.NoError(t, repo.Create(ctx, purchase))

	t.Run("idempotency key is unique per user", func(t *testing.T) {
		again, err := wallet.NewTransaction(user.ID, wallet.TransactionTypeDeposit,
			decimal.NewFromInt(100), decimal.NewFromInt(70), decimal.NewFromInt(170), "top up")
		require.NoError(t, err)
		again.WithIdempotencyKey("dep-1")
		assert.ErrorIs(t, repo.Create(ctx, again), shared.ErrAlreadyExists)

		found, err := repo.FindByIdempotencyKey(ctx, user.ID, "dep-1")
		require.NoError(t, err)
		assert.Equal(t, deposit.ID, found.ID)
	})

	t.Run("filter by type", func(t *testing.T) {
		typ := wallet.TransactionTypePurchase
		items, total, err := repo.FindByUser(ctx, user.ID, wallet.TransactionFilter{Filter: shared.DefaultFilter(), Type: &typ})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.True(t, items[0].BalanceAfter.Equal(decimal.NewFromInt(70)))
	})

	t.Run("by reference", func(t *testing.T) {
		items, err := repo.FindByReference(ctx, ref)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, purchase.ID, items[0].ID)
	})
}

func TestGormMessageRepository_FindByGroupBuy(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	groupBuyID := uuid.New()
	sender := uuid.New()
	base := time.Now().Add(-time.Hour)
	var sent []*chat.Message
	for i, text := range []string{"hi", "when is pickup?", "saturday", "thanks"} {
		m, err := chat.NewMessage(groupBuyID, sender, text, chat.MessageTypeText)
		require.NoError(t, err)
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		m.UpdatedAt = m.CreatedAt
		require.NoError(t, repo.Create(ctx, m))
		sent = append(sent, m)
	}

	latest, err := repo.FindByGroupBuy(ctx, groupBuyID, nil, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "saturday", latest[0].Content)
	assert.Equal(t, "thanks", latest[1].Content)

	since := sent[1].CreatedAt
	newer, err := repo.FindByGroupBuy(ctx, groupBuyID, &since, 50)
	require.NoError(t, err)
	require.Len(t, newer, 2)
	assert.Equal(t, "saturday", newer[0].Content)
}

func TestGormNotificationRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()
	user := uuid.New()

	a, err := notification.New(user, notification.TypeGroupBuy, "Joined", "You joined", "/group-buys/1")
	require.NoError(t, err)
	b, err := notification.New(user, notification.TypeInfo, "Welcome", "", "")
	require.NoError(t, err)
	other, err := notification.New(uuid.New(), notification.TypeInfo, "Other", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, a, b, other))

	unread, err := repo.CountUnread(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	a.MarkRead()
	require.NoError(t, repo.Update(ctx, a))

	items, total, err := repo.FindByUser(ctx, user, true, shared.DefaultFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)

	changed, err := repo.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), shared.ErrNotFound)

	_, total, err = repo.FindByUser(ctx, user, false, shared.DefaultFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGormCatalogRepositories(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	categories := NewGormCategoryRepository(db)
	locations := NewGormPickupLocationRepository(db)

	food, err := catalog.NewCategory("food", "Food", "Food")
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, food))

	dup, err := catalog.NewCategory("food", "Food again", "")
	require.NoError(t, err)
	assert.ErrorIs(t, categories.Create(ctx, dup), shared.ErrAlreadyExists)

	exists, err := categories.ExistsByCode(ctx, "food")
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	hall, err := catalog.NewPickupLocation("Town hall", "1 Main St")
	require.NoError(t, err)
	require.NoError(t, locations.Create(ctx, hall))
	closed, err := catalog.NewPickupLocation("Old depot", "2 Side St")
	require.NoError(t, err)
	closed.SetActive(false)
	require.NoError(t, locations.Create(ctx, closed))

	active, err := locations.FindAll(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, hall.ID, active[0].ID)
}
