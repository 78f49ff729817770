package groupbuy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGroupBuyService_Create(t *testing.T) {
	f := newFixture(t)
	organizer := f.user(t, "organizer", 0)

	resp := f.groupBuy(t, organizer.ID)

	assert.Equal(t, "ACTIVE", resp.Status)
	assert.Equal(t, 3, resp.MaxParticipants)
	assert.Equal(t, 3, resp.MinParticipants, "minimum defaults to maximum")
	assert.Equal(t, 3, resp.RemainingSlots)
	require.NotNil(t, resp.Organizer)
	assert.Equal(t, "organizer", resp.Organizer.Username)
	assert.Contains(t, f.outboxTypes(t), groupbuy.EventTypeCreated)
}

func TestGroupBuyService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)

	base := CreateGroupBuyInput{
		Title:           "Rice",
		Category:        "food",
		Price:           decimal.NewFromInt(10),
		MaxParticipants: 5,
		ExpiresAt:       time.Now().Add(24 * time.Hour),
	}

	t.Run("unknown organizer", func(t *testing.T) {
		_, err := f.svc.Create(ctx, uuid.New(), base)
		assert.ErrorIs(t, err, identity.ErrProfileNotFound)
	})

	t.Run("unknown category", func(t *testing.T) {
		input := base
		input.Category = "furniture"
		_, err := f.svc.Create(ctx, organizer.ID, input)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("unknown pickup location", func(t *testing.T) {
		input := base
		missing := uuid.New()
		input.PickupLocationID = &missing
		_, err := f.svc.Create(ctx, organizer.ID, input)
		assert.ErrorIs(t, err, ErrPickupLocationNotFound)
	})

	t.Run("inactive pickup location", func(t *testing.T) {
		f.location.SetActive(false)
		require.NoError(t, f.locations.Update(ctx, f.location))
		input := base
		input.PickupLocationID = &f.location.ID
		_, err := f.svc.Create(ctx, organizer.ID, input)
		assert.ErrorIs(t, err, ErrPickupLocationInactive)
	})

	t.Run("deadline in the past", func(t *testing.T) {
		input := base
		input.ExpiresAt = time.Now().Add(-time.Hour)
		_, err := f.svc.Create(ctx, organizer.ID, input)
		require.Error(t, err)
	})
}

func TestGroupBuyService_Join(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 100)
	gb := f.groupBuy(t, organizer.ID)

	result, err := f.svc.Join(ctx, buyer.ID, gb.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, "CONFIRMED", result.Participant.Status)
	assert.True(t, decimal.NewFromInt(40).Equal(result.Participant.TotalAmount))
	assert.Equal(t, 1, result.GroupBuy.CurrentParticipants)
	assert.True(t, decimal.NewFromInt(60).Equal(f.balance(t, buyer.ID)))
	assert.Equal(t, 1, f.observer.count(telemetry.JoinOutcomeAccepted))

	joined, err := f.svc.HasUserJoined(ctx, buyer.ID, gb.ID)
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Contains(t, f.outboxTypes(t), groupbuy.EventTypeJoined)
}

func TestGroupBuyService_Join_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 100)
	poor := f.user(t, "poor", 5)
	gb := f.groupBuy(t, organizer.ID)

	_, err := f.svc.Join(ctx, buyer.ID, gb.ID, 1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   uuid.UUID
		groupID  uuid.UUID
		quantity int
		want     error
	}{
		{name: "already joined", userID: buyer.ID, groupID: gb.ID, quantity: 1, want: groupbuy.ErrAlreadyJoined},
		{name: "own group buy", userID: organizer.ID, groupID: gb.ID, quantity: 1, want: groupbuy.ErrCannotJoinOwn},
		{name: "insufficient balance", userID: poor.ID, groupID: gb.ID, quantity: 1, want: shared.ErrInsufficientBalance},
		{name: "invalid quantity", userID: poor.ID, groupID: gb.ID, quantity: -1, want: groupbuy.ErrInvalidQuantity},
		{name: "unknown group buy", userID: buyer.ID, groupID: uuid.New(), quantity: 1, want: groupbuy.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Join(ctx, tt.userID, tt.groupID, tt.quantity)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, decimal.NewFromInt(5).Equal(f.balance(t, poor.ID)), "failed join leaves balance untouched")
	joined, err := f.svc.HasUserJoined(ctx, poor.ID, gb.ID)
	require.NoError(t, err)
	assert.False(t, joined)

	current, err := f.svc.GetByID(ctx, gb.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.CurrentParticipants)
	assert.Equal(t, len(tests), f.observer.count(telemetry.JoinOutcomeRejected))
}

func TestGroupBuyService_Join_FillsGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	gb := f.groupBuy(t, organizer.ID, func(in *CreateGroupBuyInput) { in.MaxParticipants = 2 })

	for _, name := range []string{"alice", "bob"} {
		u := f.user(t, name, 100)
		_, err := f.svc.Join(ctx, u.ID, gb.ID, 1)
		require.NoError(t, err)
	}

	current, err := f.svc.GetByID(ctx, gb.ID)
	require.NoError(t, err)
	assert.Equal(t, "FULL", current.Status)
	assert.Equal(t, 0, current.RemainingSlots)
	assert.Contains(t, f.outboxTypes(t), groupbuy.EventTypeFull)

	late := f.user(t, "carol", 100)
	_, err = f.svc.Join(ctx, late.ID, gb.ID, 1)
	assert.Equal(t, "GROUP_BUY_NOT_ACTIVE", shared.ErrorCode(err))
}

func TestGroupBuyService_Join_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	gb := f.groupBuy(t, organizer.ID, func(in *CreateGroupBuyInput) { in.MaxParticipants = 3 })

	users := make([]*identity.Profile, 8)
	for i := range users {
		users[i] = f.user(t, "buyer"+string(rune('a'+i)), 100)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for _, u := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.Join(ctx, id, gb.ID, 1)
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			var domainErr *shared.DomainError
			assert.True(t, errors.As(err, &domainErr), "unexpected error: %v", err)
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	current, err := f.svc.GetByID(ctx, gb.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.CurrentParticipants)
	assert.Equal(t, "FULL", current.Status)

	participants, err := f.svc.GetParticipants(ctx, gb.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 3)
}

func TestGroupBuyService_Leave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 100)
	gb := f.groupBuy(t, organizer.ID)

	_, err := f.svc.Join(ctx, buyer.ID, gb.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Leave(ctx, buyer.ID, gb.ID))

	assert.True(t, decimal.NewFromInt(100).Equal(f.balance(t, buyer.ID)), "leaving refunds the payment")
	current, err := f.svc.GetByID(ctx, gb.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.CurrentParticipants)
	assert.Contains(t, f.outboxTypes(t), groupbuy.EventTypeParticipationCancelled)

	assert.ErrorIs(t, f.svc.Leave(ctx, buyer.ID, gb.ID), ErrNotJoined)

	// rejoining after leaving is allowed
	_, err = f.svc.Join(ctx, buyer.ID, gb.ID, 1)
	require.NoError(t, err)
}

func TestGroupBuyService_Leave_AfterFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	gb := f.groupBuy(t, organizer.ID, func(in *CreateGroupBuyInput) { in.MaxParticipants = 2 })

	alice := f.user(t, "alice", 100)
	bob := f.user(t, "bob", 100)
	_, err := f.svc.Join(ctx, alice.ID, gb.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, bob.ID, gb.ID, 1)
	require.NoError(t, err)

	err = f.svc.Leave(ctx, alice.ID, gb.ID)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CANNOT_LEAVE", domainErr.Code)
	assert.True(t, decimal.NewFromInt(80).Equal(f.balance(t, alice.ID)))
}

func TestGroupBuyService_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	buyer := f.user(t, "buyer", 100)
	gb := f.groupBuy(t, organizer.ID)

	_, err := f.svc.Join(ctx, buyer.ID, gb.ID, 3)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(f.balance(t, buyer.ID)))

	_, err = f.svc.Cancel(ctx, buyer.ID, gb.ID)
	assert.ErrorIs(t, err, groupbuy.ErrNotOrganizer)

	resp, err := f.svc.Cancel(ctx, organizer.ID, gb.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(f.balance(t, buyer.ID)))
	assert.Contains(t, f.outboxTypes(t), groupbuy.EventTypeCancelled)

	orders, err := f.svc.GetUserOrders(ctx, buyer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, orders.Items, 1)
	assert.Equal(t, "REFUNDED", orders.Items[0].Status)

	_, err = f.svc.Join(ctx, buyer.ID, gb.ID, 1)
	assert.ErrorIs(t, err, groupbuy.ErrNotActive)
}

func TestGroupBuyService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	gb := f.groupBuy(t, organizer.ID)

	title := "Sweet mangoes"
	resp, err := f.svc.Update(ctx, organizer.ID, gb.ID, UpdateGroupBuyInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, resp.Title)

	other := f.user(t, "other", 0)
	_, err = f.svc.Update(ctx, other.ID, gb.ID, UpdateGroupBuyInput{Title: &title})
	assert.ErrorIs(t, err, groupbuy.ErrNotOrganizer)

	buyer := f.user(t, "buyer", 100)
	_, err = f.svc.Join(ctx, buyer.ID, gb.ID, 1)
	require.NoError(t, err)

	price := decimal.NewFromInt(5)
	_, err = f.svc.Update(ctx, organizer.ID, gb.ID, UpdateGroupBuyInput{Price: &price})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "PRICE_LOCKED", domainErr.Code)
}

func TestGroupBuyService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	f.groupBuy(t, organizer.ID, func(in *CreateGroupBuyInput) { in.Title = "Mango box" })
	f.groupBuy(t, organizer.ID, func(in *CreateGroupBuyInput) { in.Title = "Banana bunch" })
	cancelled := f.groupBuy(t, organizer.ID, func(in *CreateGroupBuyInput) { in.Title = "Mango crate" })
	_, err := f.svc.Cancel(ctx, organizer.ID, cancelled.ID)
	require.NoError(t, err)

	active, err := f.svc.GetActiveGroupBuys(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active.Total)
	for _, item := range active.Items {
		assert.NotNil(t, item.Organizer)
	}

	found, err := f.svc.SearchGroupBuys(ctx, "  ＭＡＮＧＯ  ", 1, 10)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Mango box", found.Items[0].Title)

	byCategory, err := f.svc.GetGroupBuysByCategory(ctx, "food", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byCategory.Total)
	assert.Len(t, byCategory.Items, 1)
	assert.Equal(t, 2, byCategory.TotalPages)

	mine, err := f.svc.GetUserGroupBuys(ctx, organizer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), mine.Total, "organizer listing includes closed group buys")
}

func TestGroupBuyService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, groupbuy.ErrNotFound)
}

func TestGroupBuyService_ParticipantsAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer", 0)
	alice := f.user(t, "alice", 100)
	bob := f.user(t, "bob", 100)
	gb := f.groupBuy(t, organizer.ID)

	_, err := f.svc.Join(ctx, alice.ID, gb.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, bob.ID, gb.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Leave(ctx, bob.ID, gb.ID))

	participants, err := f.svc.GetParticipants(ctx, gb.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1, "cancelled participations are hidden")
	require.NotNil(t, participants[0].User)
	assert.Equal(t, "alice", participants[0].User.Username)

	orders, err := f.svc.GetUserOrders(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, orders.Items, 1)
	require.NotNil(t, orders.Items[0].GroupBuy)
	assert.Equal(t, gb.ID, orders.Items[0].GroupBuy.ID)
	require.NotNil(t, orders.Items[0].GroupBuy.Organizer)

	_, err = f.svc.GetParticipants(ctx, uuid.New())
	assert.ErrorIs(t, err, groupbuy.ErrNotFound)
}

type mockImageStorage struct {
	mock.Mock
}

func (m *mockImageStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockImageStorage) PublicURL(storageKey string) string {
	return m.Called(storageKey).String(0)
}

func TestGroupBuyService_RequestImageUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.RequestImageUpload(ctx, userID, ImageUploadInput{Filename: "a.png", ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	storage := new(mockImageStorage)
	f.svc.SetImageStorage(storage)
	expires := time.Now().Add(15 * time.Minute)
	keyPrefix := "group-buys/" + userID.String() + "/"
	storage.On("GenerateUploadURL", ctx, mock.MatchedBy(func(key string) bool {
		return len(key) > len(keyPrefix) && key[:len(keyPrefix)] == keyPrefix && key[len(key)-5:] == ".jpeg"
	}), "image/jpeg", 15*time.Minute).Return("https://upload.example/put", expires, nil).Once()
	storage.On("PublicURL", mock.Anything).Return("https://cdn.example/img.jpeg").Once()

	result, err := f.svc.RequestImageUpload(ctx, userID, ImageUploadInput{Filename: "photo.jpeg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "https://upload.example/put", result.UploadURL)
	assert.Equal(t, "https://cdn.example/img.jpeg", result.PublicURL)
	assert.Equal(t, expires, result.ExpiresAt)
	storage.AssertExpectations(t)

	_, err = f.svc.RequestImageUpload(ctx, userID, ImageUploadInput{Filename: "x.svg", ContentType: "image/svg+xml"})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_CONTENT_TYPE", domainErr.Code)
}

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"  Mango  Box ": "mango box",
		"ＭＡＮＧＯ":         "mango",
		"Straße":        "strasse",
		"\tfresh\nfruit": "fresh fruit",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeQuery(in), "input %q", in)
	}
}
