package settlement

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	groupbuyapp "github.com/groupbuy/backend/internal/application/groupbuy"
	"github.com/groupbuy/backend/internal/domain/catalog"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"github.com/groupbuy/backend/internal/infrastructure/event"
	"github.com/groupbuy/backend/internal/infrastructure/persistence"
	"github.com/groupbuy/backend/internal/infrastructure/scheduler"
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

type recordingQueue struct {
	mu   sync.Mutex
	jobs []string
}

func (q *recordingQueue) Enqueue(kind scheduler.JobKind, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, string(kind)+":"+id.String())
	return nil
}

type fixture struct {
	executor     *Executor
	groupBuys    *groupbuyapp.GroupBuyService
	profiles     *persistence.GormProfileRepository
	participants *persistence.GormParticipantRepository
	transactions *persistence.GormTransactionRepository
	outbox       *event.GormOutboxRepository
	later        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	scope := persistence.NewGormTransactionScope(db, event.NewOutboxPublisher(serializer, nil))

	categories := persistence.NewGormCategoryRepository(db)
	food, err := catalog.NewCategory("food", "美食", "Food")
	require.NoError(t, err)
	require.NoError(t, categories.Create(context.Background(), food))

	f := &fixture{
		profiles:     persistence.NewGormProfileRepository(db),
		participants: persistence.NewGormParticipantRepository(db),
		transactions: persistence.NewGormTransactionRepository(db),
		outbox:       event.NewGormOutboxRepository(db),
		later:        time.Now().Add(72 * time.Hour),
	}
	f.groupBuys = groupbuyapp.NewGroupBuyService(
		persistence.NewGormGroupBuyRepository(db),
		f.participants,
		f.profiles,
		categories,
		persistence.NewGormPickupLocationRepository(db),
		scope,
		config.GroupBuyConfig{JoinRetries: 3},
		zap.NewNop(),
	)
	f.executor = NewExecutor(scope, zap.NewNop())
	f.executor.SetClock(func() time.Time { return f.later })
	return f
}

func (f *fixture) user(t *testing.T, username string, balance int64) *identity.Profile {
	t.Helper()
	p, err := identity.NewProfile(username+"@campus.edu", "password123", username, username)
	require.NoError(t, err)
	p.WalletBalance = decimal.NewFromInt(balance)
	require.NoError(t, f.profiles.Create(context.Background(), p))
	return p
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := f.profiles.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.WalletBalance
}

func (f *fixture) open(t *testing.T, organizerID uuid.UUID, minP, maxP int) uuid.UUID {
	t.Helper()
	resp, err := f.groupBuys.Create(context.Background(), organizerID, groupbuyapp.CreateGroupBuyInput{
		Title:           "Dumplings",
		Category:        "food",
		Price:           decimal.NewFromInt(15),
		MinParticipants: minP,
		MaxParticipants: maxP,
		ExpiresAt:       time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) join(t *testing.T, userID, id uuid.UUID) {
	t.Helper()
	_, err := f.groupBuys.Join(context.Background(), userID, id, 1)
	require.NoError(t, err)
}

func (f *fixture) status(t *testing.T, id uuid.UUID) string {
	t.Helper()
	g, err := f.groupBuys.GetByID(context.Background(), id)
	require.NoError(t, err)
	return g.Status
}

func (f *fixture) hasEvent(t *testing.T, eventType string) bool {
	t.Helper()
	entries, err := f.outbox.FindPending(context.Background(), 200)
	require.NoError(t, err)
	for _, e := range entries {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

func TestExecutor_ExpireThenRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 50)
	id := f.open(t, organizer.ID, 3, 5)
	f.join(t, buyer.ID, id)
	require.True(t, decimal.NewFromInt(35).Equal(f.balance(t, buyer.ID)))

	outcome, err := f.executor.Expire(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExpired, outcome)
	assert.Equal(t, "EXPIRED", f.status(t, id))
	assert.True(t, f.hasEvent(t, groupbuy.EventTypeExpired))

	outcome, err = f.executor.Expire(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome, "expiring twice is a no-op")

	outcome, err = f.executor.Refund(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRefunded, outcome)
	assert.Equal(t, "REFUNDED", f.status(t, id))
	assert.True(t, decimal.NewFromInt(50).Equal(f.balance(t, buyer.ID)))
	assert.True(t, f.hasEvent(t, groupbuy.EventTypeRefunded))

	outcome, err = f.executor.Refund(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.True(t, decimal.NewFromInt(50).Equal(f.balance(t, buyer.ID)), "refund is credited once")

	txs, total, err := f.transactions.FindByUser(ctx, buyer.ID, wallet.TransactionFilter{Filter: shared.Filter{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	var refund *wallet.Transaction
	for _, tx := range txs {
		if tx.Type == wallet.TransactionTypeRefund {
			refund = tx
		}
	}
	require.NotNil(t, refund)
	require.NotNil(t, refund.ReferenceID)
	assert.Equal(t, id, *refund.ReferenceID)
}

func TestExecutor_ExpireWithMinimumMetSettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	alice := f.user(t, "alice", 50)
	bob := f.user(t, "bob", 50)
	id := f.open(t, organizer.ID, 2, 5)
	f.join(t, alice.ID, id)
	f.join(t, bob.ID, id)

	outcome, err := f.executor.Expire(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, outcome)
	assert.Equal(t, "SETTLED", f.status(t, id))
	assert.True(t, decimal.NewFromInt(30).Equal(f.balance(t, organizer.ID)))

	participants, err := f.participants.FindByGroupBuy(ctx, id)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	for _, p := range participants {
		assert.Equal(t, groupbuy.ParticipantStatusCompleted, p.Status)
	}
	assert.True(t, f.hasEvent(t, groupbuy.EventTypeSettled))
}

func TestExecutor_SettleFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 10)
	id := f.open(t, organizer.ID, 0, 2)
	for _, name := range []string{"alice", "bob"} {
		f.join(t, f.user(t, name, 50).ID, id)
	}
	require.Equal(t, "FULL", f.status(t, id))

	// a full group settles without waiting for its deadline
	f.executor.SetClock(time.Now)
	outcome, err := f.executor.Settle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, outcome)
	assert.True(t, decimal.NewFromInt(40).Equal(f.balance(t, organizer.ID)))

	g, err := f.groupBuys.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SETTLED", g.Status)
	assert.NotNil(t, g.SettledAt)

	outcome, err = f.executor.Settle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.True(t, decimal.NewFromInt(40).Equal(f.balance(t, organizer.ID)), "organizer is paid once")
}

func TestExecutor_SkipsWhenNotDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	id := f.open(t, organizer.ID, 2, 5)
	f.executor.SetClock(time.Now)

	outcome, err := f.executor.Expire(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = f.executor.Settle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = f.executor.Refund(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, "ACTIVE", f.status(t, id))

	outcome, err = f.executor.Expire(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome, "unknown group buys are ignored")
}

func TestExecutor_Execute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 50)
	id := f.open(t, organizer.ID, 2, 5)
	f.join(t, buyer.ID, id)

	queue := &recordingQueue{}
	f.executor.SetFollowUp(queue)

	require.NoError(t, f.executor.Execute(ctx, scheduler.NewJob(scheduler.JobKindExpire, id, 3)))
	assert.Equal(t, []string{"REFUND:" + id.String()}, queue.jobs)

	require.NoError(t, f.executor.Execute(ctx, scheduler.NewJob(scheduler.JobKindRefund, id, 3)))
	assert.Equal(t, "REFUNDED", f.status(t, id))

	err := f.executor.Execute(ctx, scheduler.NewJob(scheduler.JobKind("ARCHIVE"), id, 3))
	assert.Error(t, err)
}

func TestExecutor_RunsOnScheduler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 50)
	id := f.open(t, organizer.ID, 3, 5)
	f.join(t, buyer.ID, id)

	s := scheduler.NewScheduler(scheduler.SchedulerConfig{Workers: 2, RetryDelay: 10 * time.Millisecond}, f.executor, zap.NewNop())
	f.executor.SetFollowUp(s)
	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	require.NoError(t, s.Enqueue(scheduler.JobKindExpire, id))
	assert.Eventually(t, func() bool {
		g, err := f.groupBuys.GetByID(ctx, id)
		return err == nil && g.Status == "REFUNDED"
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, decimal.NewFromInt(50).Equal(f.balance(t, buyer.ID)))
}

func TestGroupBuyFullHandler(t *testing.T) {
	queue := &recordingQueue{}
	h := NewGroupBuyFullHandler(queue, zap.NewNop())
	assert.Equal(t, []string{groupbuy.EventTypeFull}, h.EventTypes())

	g := &groupbuy.GroupBuy{BaseAggregateRoot: shared.NewBaseAggregateRoot(), MaxParticipants: 2, CurrentParticipants: 2, Status: groupbuy.StatusFull}
	require.NoError(t, h.Handle(context.Background(), groupbuy.NewFullEvent(g)))
	assert.Equal(t, []string{"SETTLE:" + g.ID.String()}, queue.jobs)

	err := h.Handle(context.Background(), groupbuy.NewExpiredEvent(g))
	assert.Error(t, err)
}
