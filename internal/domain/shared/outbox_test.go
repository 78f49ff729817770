package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	aggID := uuid.New()
	evt := &stubEvent{BaseDomainEvent: NewBaseDomainEvent("groupbuy.joined", "GroupBuy", aggID)}

	entry := NewOutboxEntry(evt, []byte(`{}`))

	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "groupbuy.joined", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "GroupBuy", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	tests := []struct {
		status  OutboxStatus
		wantErr bool
	}{
		{OutboxStatusPending, false},
		{OutboxStatusFailed, false},
		{OutboxStatusProcessing, true},
		{OutboxStatusSent, true},
		{OutboxStatusDead, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := &OutboxEntry{Status: tt.status}
			err := e.MarkProcessing()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OutboxStatusProcessing, e.Status)
		})
	}
}

func TestOutboxEntry_MarkFailed_ExponentialBackoff(t *testing.T) {
	e := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 5}

	before := time.Now()
	e.MarkFailed("boom")
	require.NotNil(t, e.NextRetryAt)
	assert.Equal(t, OutboxStatusFailed, e.Status)
	assert.WithinDuration(t, before.Add(time.Second), *e.NextRetryAt, 200*time.Millisecond)

	e.MarkFailed("boom")
	assert.WithinDuration(t, time.Now().Add(2*time.Second), *e.NextRetryAt, 200*time.Millisecond)
	assert.True(t, e.CanRetry())
}

func TestOutboxEntry_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	e := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 2}

	e.MarkFailed("first")
	assert.False(t, e.IsDead())

	e.MarkFailed("second")
	assert.True(t, e.IsDead())
	assert.Nil(t, e.NextRetryAt)
	assert.Equal(t, "second", e.LastError)
	assert.False(t, e.CanRetry())
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	e := &OutboxEntry{Status: OutboxStatusProcessing}
	e.MarkSent()
	assert.Equal(t, OutboxStatusSent, e.Status)
	assert.NotNil(t, e.ProcessedAt)
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	e := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 1}
	assert.Error(t, e.ResetForRetry())

	e.MarkFailed("gone")
	require.True(t, e.IsDead())
	require.NoError(t, e.ResetForRetry())
	assert.Equal(t, OutboxStatusPending, e.Status)
	assert.Zero(t, e.RetryCount)
	assert.Empty(t, e.LastError)
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "group buy not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "NOT_FOUND", ErrorCode(err))
	assert.Equal(t, "", ErrorCode(assert.AnError))
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPaginated([]int{}, 0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3, PageSize: 10}.Normalize()
	assert.Equal(t, 20, f.Offset())
}
