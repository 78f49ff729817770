package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	infraevent "github.com/groupbuy/backend/internal/infrastructure/event"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOutboxServiceFixture(t *testing.T) (*OutboxService, *infraevent.GormOutboxRepository) {
	t.Helper()
	repo := infraevent.NewGormOutboxRepository(testutil.NewSQLiteDB(t))
	return NewOutboxService(repo, zap.NewNop()), repo
}

func saveEntry(t *testing.T, repo *infraevent.GormOutboxRepository, dead bool) *shared.OutboxEntry {
	t.Helper()
	entry := shared.NewOutboxEntry(testutil.NewTestEvent("groupbuy.joined"), []byte(`{}`))
	if dead {
		entry.MaxRetries = 1
		entry.MarkFailed("subscriber down")
	}
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	svc, repo := newOutboxServiceFixture(t)
	for range 3 {
		saveEntry(t, repo, true)
	}
	saveEntry(t, repo, false)

	page, err := svc.GetDeadLetterEntries(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "DEAD", page.Items[0].Status)
	assert.Equal(t, "subscriber down", page.Items[0].LastError)
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	svc, repo := newOutboxServiceFixture(t)
	ctx := context.Background()
	dead := saveEntry(t, repo, true)
	woken := 0
	svc.OnRequeue(func() { woken++ })

	resp, err := svc.RetryDeadEntry(ctx, dead.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Zero(t, resp.RetryCount)
	assert.Equal(t, 1, woken)

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestOutboxService_RetryDeadEntry_Errors(t *testing.T) {
	svc, repo := newOutboxServiceFixture(t)
	ctx := context.Background()

	_, err := svc.RetryDeadEntry(ctx, uuid.New())
	assert.Equal(t, "OUTBOX_ENTRY_NOT_FOUND", shared.ErrorCode(err))

	live := saveEntry(t, repo, false)
	svc.OnRequeue(func() { t.Error("nothing was requeued") })
	_, err = svc.RetryDeadEntry(ctx, live.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOutboxService_GetEntry(t *testing.T) {
	svc, repo := newOutboxServiceFixture(t)
	entry := saveEntry(t, repo, false)

	resp, err := svc.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "groupbuy.joined", resp.EventType)
}

func TestOutboxService_RetryAllAndStats(t *testing.T) {
	svc, repo := newOutboxServiceFixture(t)
	ctx := context.Background()
	for range 3 {
		saveEntry(t, repo, true)
	}
	saveEntry(t, repo, false)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Dead)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 4, stats.Total)

	count, err := svc.RetryAllDeadEntries(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	stats, err = svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Dead)
	assert.EqualValues(t, 4, stats.Pending)
}
