package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	s := NewInMemoryIdempotencyStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	first, err := s.MarkProcessed(ctx, "h:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkProcessed(ctx, "h:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	seen, err := s.IsProcessed(ctx, "h:1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.IsProcessed(ctx, "h:2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	s := NewInMemoryIdempotencyStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, _ = s.MarkProcessed(ctx, "k", time.Minute)
	now = now.Add(2 * time.Minute)

	seen, _ := s.IsProcessed(ctx, "k")
	assert.False(t, seen)

	s.sweep()
	assert.Zero(t, s.Size())

	marked, _ := s.MarkProcessed(ctx, "k", time.Minute)
	assert.True(t, marked)
}

func TestInMemoryIdempotencyStore_ConcurrentMarkHasOneWinner(t *testing.T) {
	s := NewInMemoryIdempotencyStore(time.Hour)
	defer s.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.MarkProcessed(context.Background(), "same", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	s := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestNewIdempotencyStore_FallsBackWithoutRedis(t *testing.T) {
	s := NewIdempotencyStore(nil, zap.NewNop())
	defer s.Close()
	_, ok := s.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}
