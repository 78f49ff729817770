package identity

import (
	"testing"

	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

func TestNewProfile(t *testing.T) {
	t.Run("creates profile with empty wallet", func(t *testing.T) {
		p, err := NewProfile(" Alice@Campus.EDU ", "secret123", "alice", "Alice Wang")
		require.NoError(t, err)

		assert.Equal(t, "alice@campus.edu", p.Email)
		assert.Equal(t, "alice", p.Username)
		assert.True(t, p.WalletBalance.IsZero())
		assert.True(t, p.Rating.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, RoleUser, p.Role)
		assert.True(t, p.CanSignIn())
		assert.True(t, p.VerifyPassword("secret123"))
		assert.False(t, p.VerifyPassword("wrong-password"))
	})

	tests := []struct {
		name     string
		email    string
		password string
		username string
		code     string
	}{
		{"bad email", "not-an-email", "secret123", "alice", "INVALID_EMAIL"},
		{"short username", "a@b.cn", "secret123", "al", "INVALID_USERNAME"},
		{"username with spaces", "a@b.cn", "secret123", "al ice", "INVALID_USERNAME"},
		{"short password", "a@b.cn", "short", "alice", "INVALID_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfile(tt.email, tt.password, tt.username, "")
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.ErrorCode(err))
		})
	}
}

func TestProfile_Wallet(t *testing.T) {
	p, err := NewProfile("bob@campus.edu", "secret123", "bob", "")
	require.NoError(t, err)

	before, after, err := p.Credit(decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.True(t, before.IsZero())
	assert.True(t, after.Equal(decimal.NewFromInt(50)))

	before, after, err = p.Debit(decimal.RequireFromString("19.90"))
	require.NoError(t, err)
	assert.True(t, before.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "30.1", after.String())

	_, _, err = p.Debit(decimal.NewFromInt(31))
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.Equal(t, "30.1", p.WalletBalance.String())

	_, _, err = p.Credit(decimal.Zero)
	assert.Equal(t, "INVALID_AMOUNT", shared.ErrorCode(err))
}

func TestProfile_ApplyUpdate(t *testing.T) {
	p, err := NewProfile("carol@campus.edu", "secret123", "carol", "")
	require.NoError(t, err)

	name := "  Carol Li "
	phone := "13800000000"
	require.NoError(t, p.ApplyUpdate(ProfileUpdate{FullName: &name, Phone: &phone}))
	assert.Equal(t, "Carol Li", p.FullName)
	assert.Equal(t, phone, p.Phone)
	assert.Equal(t, "carol", p.Username)

	bad := "x"
	err = p.ApplyUpdate(ProfileUpdate{Username: &bad})
	assert.Equal(t, "INVALID_USERNAME", shared.ErrorCode(err))
}
