package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/cache"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type namedMock struct {
	*testutil.MockEventHandler
	name string
}

func (n namedMock) Name() string { return n.name }

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	inner := testutil.NewMockEventHandler("test.a")
	h := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())
	evt := testutil.NewTestEvent("test.a")

	require.NoError(t, h.Handle(context.Background(), evt))
	require.NoError(t, h.Handle(context.Background(), evt))
	assert.Equal(t, 1, inner.HandledCount())
	assert.Equal(t, []string{"test.a"}, h.EventTypes())
}

func TestIdempotentHandler_FailureIsRetried(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	inner := testutil.NewMockEventHandler("test.a")
	inner.SetError(errors.New("boom"))
	h := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())
	evt := testutil.NewTestEvent("test.a")

	assert.Error(t, h.Handle(context.Background(), evt))
	inner.SetError(nil)
	require.NoError(t, h.Handle(context.Background(), evt))
	assert.Equal(t, 2, inner.HandledCount())
}

func TestIdempotentHandler_KeysArePerHandler(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	a := namedMock{testutil.NewMockEventHandler("test.a"), "notifications"}
	b := namedMock{testutil.NewMockEventHandler("test.a"), "chat"}
	wrapped := WrapHandlersWithIdempotency([]shared.EventHandler{a, b}, store, time.Hour, zap.NewNop())

	bus := NewInMemoryEventBus(zap.NewNop())
	for _, h := range wrapped {
		bus.Subscribe(h)
	}
	evt := testutil.NewTestEvent("test.a")
	require.NoError(t, bus.Publish(context.Background(), evt))
	require.NoError(t, bus.Publish(context.Background(), evt))

	assert.Equal(t, 1, a.HandledCount())
	assert.Equal(t, 1, b.HandledCount())
	assert.Equal(t, "notifications", wrapped[0].(*IdempotentHandler).Name())
}
