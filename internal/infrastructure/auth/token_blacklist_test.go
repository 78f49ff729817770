package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	blacklist := NewInMemoryTokenBlacklist()
	blacklist.now = func() time.Time { return now }

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	t.Run("entry lapses with the token", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
		assert.Empty(t, blacklist.entries)
	})

	t.Run("already expired tokens are not stored", func(t *testing.T) {
		require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-3", 0))
		assert.NotContains(t, blacklist.entries, "jti-3")
	})
}

func TestNewTokenBlacklist_FallsBackToMemory(t *testing.T) {
	_, ok := NewTokenBlacklist(nil).(*InMemoryTokenBlacklist)
	assert.True(t, ok)
}
