package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createProfile(t *testing.T, db *gorm.DB, username string, balance int64) *identity.Profile {
	t.Helper()
	p, err := identity.NewProfile(username+"@example.com", "password123", username, "")
	require.NoError(t, err)
	p.WalletBalance = decimal.NewFromInt(balance)
	require.NoError(t, NewGormProfileRepository(db).Create(context.Background(), p))
	return p
}

func createGroupBuy(t *testing.T, db *gorm.DB, organizerID uuid.UUID, title string, mutate ...func(*groupbuy.Draft)) *groupbuy.GroupBuy {
	t.Helper()
	now := time.Now()
	d := groupbuy.Draft{
		OrganizerID:     organizerID,
		Title:           title,
		Description:     "shared order",
		Category:        "food",
		Price:           decimal.NewFromInt(25),
		MaxParticipants: 3,
		ExpiresAt:       now.Add(24 * time.Hour),
	}
	for _, fn := range mutate {
		fn(&d)
	}
	g, err := groupbuy.New(d, now, 0)
	require.NoError(t, err)
	require.NoError(t, NewGormGroupBuyRepository(db).Create(context.Background(), g))
	return g
}
